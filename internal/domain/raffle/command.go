package raffle

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/forum"
)

type CommandKind string

const (
	StartGame      CommandKind = "start_game"
	SubmitEntry    CommandKind = "submit_entry"
	SetWinnerCount CommandKind = "set_winner_count"
	SetDeadline    CommandKind = "set_deadline"
)

// Command describes one command of the board. Validate must not change any
// state, Apply runs only after Validate succeeded.
type Command struct {
	Kind    CommandKind
	Pattern *regexp.Regexp
	// Repeat makes every occurrence in a post count, not only the first.
	Repeat   bool
	Validate func(ctx context.Context, inv *Invocation) error
	Apply    func(ctx context.Context, inv *Invocation) error
}

// Match returns the submatches of the command in text, nil if it does not
// appear.
func (c Command) Match(text string) [][]string {
	if c.Repeat {
		return c.Pattern.FindAllStringSubmatch(text, -1)
	}

	if m := c.Pattern.FindStringSubmatch(text); m != nil {
		return [][]string{m}
	}

	return nil
}

// Invocation is one command matched in one post.
type Invocation struct {
	Post    forum.Post
	Body    *goquery.Selection
	Matches [][]string
	Now     time.Time

	// Set by Validate for Apply.
	game     *entity.Game
	settings repository.GameSettings
	topicIDs []int64
}

// errIgnored marks a command which is valid but has nothing to do, e.g. a
// start command replayed in a thread which already has a game.
var errIgnored = errors.New("ignored")

func ignored(format string, a ...any) error {
	return fmt.Errorf("%w: %s", errIgnored, fmt.Sprintf(format, a...))
}

const dateLayout = "2006/01/02"

var (
	inlineStartRegex = regexp.MustCompile(`^\s*(\d{4}/\d{2}/\d{2})\s+\[?(\d+)\]?`)
	blockWinnerRegex = regexp.MustCompile(`(?i)vencedores:\s*(\d+)`)
	blockDateRegex   = regexp.MustCompile(`(?i)deadline:\s*(\d{4}/\d{2}/\d{2})`)
)

// parseDate reads a YYYY/MM/DD date as midnight UTC.
func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, errorx.New(errorx.BadRequest, "Invalid date %q", s)
	}

	return t, nil
}

func parseWinners(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errorx.New(errorx.BadRequest, "Invalid number of winners %q", s)
	}

	return n, nil
}

// parseInlineStart reads "YYYY/MM/DD [N]" following the start keyword.
func parseInlineStart(args string) (int, time.Time, error) {
	m := inlineStartRegex.FindStringSubmatch(args)
	if m == nil {
		return 0, time.Time{}, errorx.New(errorx.BadRequest, "Expected a deadline and a number of winners")
	}

	deadline, err := parseDate(m[1])
	if err != nil {
		return 0, time.Time{}, err
	}

	winners, err := parseWinners(m[2])
	if err != nil {
		return 0, time.Time{}, err
	}

	return winners, deadline, nil
}

// parseCodeBlockStart reads the "vencedores" and "deadline" lines of the
// first code block of the post.
func parseCodeBlockStart(body *goquery.Selection) (int, time.Time, error) {
	code := body.Find("div.code").First()
	if code.Length() == 0 {
		return 0, time.Time{}, errorx.New(errorx.BadRequest, "Missing code block with the raffle parameters")
	}

	text := code.Text()
	wm := blockWinnerRegex.FindStringSubmatch(text)
	if wm == nil {
		return 0, time.Time{}, errorx.New(errorx.BadRequest, "Missing vencedores in code block")
	}

	dm := blockDateRegex.FindStringSubmatch(text)
	if dm == nil {
		return 0, time.Time{}, errorx.New(errorx.BadRequest, "Missing deadline in code block")
	}

	winners, err := parseWinners(wm[1])
	if err != nil {
		return 0, time.Time{}, err
	}

	deadline, err := parseDate(dm[1])
	if err != nil {
		return 0, time.Time{}, err
	}

	return winners, deadline, nil
}

// stripQuotes parses a post body and drops the quoted posts, so a reply
// quoting a command does not run it again.
func stripQuotes(content string) (*goquery.Selection, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, "", err
	}

	body := doc.Find("body")
	body.Children().Filter("div.quoteheader, div.quote").Remove()
	body.Find("br").ReplaceWithHtml("\n")

	return body, body.Text(), nil
}
