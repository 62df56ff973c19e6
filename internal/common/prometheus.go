package common

import "github.com/prometheus/client_golang/prometheus"

const (
	CommandTotal             = "raffle_commands_total"
	EntryValidationTotal     = "raffle_entry_validations_total"
	StageTransitionTotal     = "raffle_stage_transitions_total"
	QueueDeadLetterTotal     = "raffle_queue_dead_letters_total"
	ForumRequestFailure      = "raffle_forum_request_failures_total"
	QueueTaskDurationSeconds = "raffle_queue_task_duration_seconds"
	CycleDurationSeconds     = "raffle_cycle_duration_seconds"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		CommandTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: CommandTotal,
			Help: "Count of matched commands by outcome",
		}, []string{"kind", "outcome"}),
		EntryValidationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: EntryValidationTotal,
			Help: "Count of validated entry links by outcome",
		}, []string{"outcome"}),
		StageTransitionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: StageTransitionTotal,
			Help: "Count of game stage transitions",
		}, []string{"stage"}),
		QueueDeadLetterTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: QueueDeadLetterTotal,
			Help: "Count of queue tasks which exhausted their retries",
		}, []string{"name"}),
		ForumRequestFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ForumRequestFailure,
			Help: "Count of failed forum requests",
		}, []string{"reason"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		QueueTaskDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: QueueTaskDurationSeconds,
			Help: "Duration of queue task attempts",
		}, []string{"name", "status"}),
		CycleDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: CycleDurationSeconds,
			Help: "Duration of poller cycles",
		}, []string{"job"}),
	}
)
