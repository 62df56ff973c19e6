package common

const (
	RedisKeyLastPostID  = "raffle:last_post_id"
	RedisKeyDeadLetters = "raffle:dead_letters"
)
