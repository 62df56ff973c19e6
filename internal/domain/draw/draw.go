// Package draw implements the provably fair ticket draw of a raffle.
//
// Given the game seed, the hash of the target block and the ordered entry
// list, every ticket is
//
//	(hex(SHA256(seed + blockHash + nonce))[:10] mod totalTickets) + 1
//
// for nonce = 0 .. numberWinners-1. Anyone holding the same inputs can
// recompute the same tickets and winners.
package draw

import (
	"fmt"
	"strconv"

	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/pkg/crypto"
)

// HexDigits is how many leading hex characters of the hash form a ticket.
const HexDigits = 10

// Entry is the part of a raffle entry the draw depends on.
type Entry struct {
	ID        int64
	Author    string
	AuthorUID int64
}

// FromEntities keeps the order of the stored entries.
func FromEntities(entries []entity.Entry) []Entry {
	result := make([]Entry, len(entries))
	for i, e := range entries {
		result[i] = Entry{ID: e.ID, Author: e.Author, AuthorUID: e.AuthorUID}
	}

	return result
}

// TicketRange is the contiguous block of tickets held by one author.
type TicketRange struct {
	Author    string
	AuthorUID int64
	First     int
	Last      int
	EntryIDs  []int64
}

func (r TicketRange) Size() int {
	return r.Last - r.First + 1
}

func (r TicketRange) Contains(ticket int) bool {
	return ticket >= r.First && ticket <= r.Last
}

type Winner struct {
	Author    string
	AuthorUID int64
	Ticket    int
	Nonce     int
	EntryID   int64
}

type Result struct {
	TotalTickets int
	Ranges       []TicketRange
	Tickets      []int
	Winners      []Winner
}

// Ranges groups entries by author in first occurrence order and assigns each
// author a 1-based ticket range sized to their entry count.
func Ranges(entries []Entry) []TicketRange {
	index := map[int64]int{}
	ranges := []TicketRange{}
	for _, e := range entries {
		i, ok := index[e.AuthorUID]
		if !ok {
			i = len(ranges)
			index[e.AuthorUID] = i
			ranges = append(ranges, TicketRange{Author: e.Author, AuthorUID: e.AuthorUID})
		}

		ranges[i].EntryIDs = append(ranges[i].EntryIDs, e.ID)
	}

	last := 0
	for i := range ranges {
		ranges[i].First = last + 1
		last += len(ranges[i].EntryIDs)
		ranges[i].Last = last
	}

	return ranges
}

// Ticket computes the ticket of one nonce. totalTickets must be positive.
func Ticket(seed, blockHash string, nonce, totalTickets int) (int, error) {
	if totalTickets <= 0 {
		return 0, fmt.Errorf("invalid number of tickets %d", totalTickets)
	}

	hash := crypto.SHA256Hex([]byte(seed + blockHash + strconv.Itoa(nonce)))
	decimal, err := crypto.HexPrefixUint(hash, HexDigits)
	if err != nil {
		return 0, err
	}

	return int(decimal%uint64(totalTickets)) + 1, nil
}

// Resolve returns the range index holding ticket, or -1.
func Resolve(ranges []TicketRange, ticket int) int {
	for i, r := range ranges {
		if r.Contains(ticket) {
			return i
		}
	}

	return -1
}

// Draw runs one draw per winner slot and keeps the first ticket of every
// distinct author, at most numberWinners of them.
func Draw(seed, blockHash string, entries []Entry, numberWinners int) (*Result, error) {
	if numberWinners <= 0 {
		return nil, fmt.Errorf("invalid number of winners %d", numberWinners)
	}

	result := &Result{
		TotalTickets: len(entries),
		Ranges:       Ranges(entries),
		Tickets:      []int{},
		Winners:      []Winner{},
	}

	if result.TotalTickets == 0 {
		return result, nil
	}

	won := map[int64]bool{}
	for nonce := 0; nonce < numberWinners; nonce++ {
		ticket, err := Ticket(seed, blockHash, nonce, result.TotalTickets)
		if err != nil {
			return nil, err
		}
		result.Tickets = append(result.Tickets, ticket)

		i := Resolve(result.Ranges, ticket)
		if i < 0 {
			return nil, fmt.Errorf("ticket %d is out of every range", ticket)
		}

		r := result.Ranges[i]
		if won[r.AuthorUID] || len(result.Winners) >= numberWinners {
			continue
		}
		won[r.AuthorUID] = true

		result.Winners = append(result.Winners, Winner{
			Author:    r.Author,
			AuthorUID: r.AuthorUID,
			Ticket:    ticket,
			Nonce:     nonce,
			EntryID:   r.EntryIDs[ticket-r.First],
		})
	}

	return result, nil
}
