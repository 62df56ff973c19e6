// Package message renders raffle state into the BBCode posts published on
// the board. Copy is in Portuguese, as on the board the bot serves.
package message

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/questx-lab/raffle/config"
	"github.com/questx-lab/raffle/internal/domain/draw"
	"github.com/questx-lab/raffle/internal/entity"
)

//go:embed template/*.tmpl
var templateFS embed.FS

const deadlineLayout = "02/01/2006 15:04:05 MST"

func RaffleSubject(gameID int64) string {
	return fmt.Sprintf("Sorteio #%d", gameID)
}

func OpenRaffleSubject(gameID int64) string {
	return fmt.Sprintf("[Aberto] Sorteio #%d", gameID)
}

const (
	ClosingSubject = "Sorteio fechado"
	ResultSubject  = "Sorteio finalizado"
)

// TopMerited is the entered topic which received the most merits.
type TopMerited struct {
	TopicID int64
	Title   string
	Merits  int
	Author  string
}

type Renderer struct {
	forumURL    string
	explorerURL string
	now         func() time.Time
	templates   *template.Template
}

func NewRenderer(cfg config.Configs) *Renderer {
	return &Renderer{
		forumURL:    strings.TrimSuffix(cfg.Forum.BaseURL, "/"),
		explorerURL: strings.TrimSuffix(cfg.Chain.ExplorerURL, "/"),
		now:         time.Now,
		templates:   template.Must(template.ParseFS(templateFS, "template/*.tmpl")),
	}
}

// Raffle renders the main raffle post: rules, seed and the entries so far.
func (r *Renderer) Raffle(game *entity.Game, entries []entity.Entry) (string, error) {
	return r.execute("raffle.tmpl", map[string]any{
		"Game":     game,
		"Deadline": game.Deadline.UTC().Format(deadlineLayout),
		"Now":      r.now().Unix(),
		"ForumURL": r.forumURL,
		"Table":    r.entriesTable(entries),
	})
}

// Closing renders the announcement which binds the draw to blockHeight.
func (r *Renderer) Closing(game *entity.Game, blockHeight int64, entries []entity.Entry) (string, error) {
	return r.execute("closing.tmpl", map[string]any{
		"Game":        game,
		"BlockHeight": blockHeight,
		"Total":       len(entries),
		"Table":       ticketsTable(draw.Ranges(draw.FromEntities(entries))),
		"VerifyURL":   r.verifyURL(blockHeight),
	})
}

// Result renders the draw outcome. top may be nil when no entered topic could
// be looked up.
func (r *Renderer) Result(
	game *entity.Game, entries []entity.Entry, result *draw.Result, top *TopMerited,
) (string, error) {
	tickets := make([]string, len(result.Tickets))
	for i, t := range result.Tickets {
		tickets[i] = strconv.Itoa(t)
	}

	winners := make([]string, len(result.Winners))
	for i, w := range result.Winners {
		winners[i] = fmt.Sprintf("%d - %s", w.Ticket, w.Author)
	}

	return r.execute("result.tmpl", map[string]any{
		"Game":      game,
		"Result":    result,
		"Tickets":   strings.Join(tickets, ","),
		"Winners":   strings.Join(winners, "\n"),
		"Total":     len(entries),
		"VerifyURL": r.verifyURL(game.BlockHeight),
		"ForumURL":  r.forumURL,
		"Top":       top,
	})
}

func (r *Renderer) execute(name string, data any) (string, error) {
	buf := bytes.NewBuffer(nil)
	if err := r.templates.ExecuteTemplate(buf, name, data); err != nil {
		return "", err
	}

	return strings.TrimSpace(buf.String()), nil
}

func (r *Renderer) verifyURL(height int64) string {
	return fmt.Sprintf("%s/%d", r.explorerURL, height)
}

func (r *Renderer) entriesTable(entries []entity.Entry) string {
	if len(entries) == 0 {
		return "[table]\n[tr][td]...[/td][/tr]\n[/table]"
	}

	rows := []string{
		"[table]",
		"[tr]",
		"[td][b]Usuário[/b][/td]",
		"[td][b]Tickets[/b][/td]",
		"[td][b]Tópicos[/b][/td]",
		"[/tr]",
		"[tr]",
		"[td]________________[/td]",
		"[td]________________[/td]",
		"[td]________________[/td]",
		"[/tr]",
	}

	byID := make(map[int64]entity.Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	for _, group := range draw.Ranges(draw.FromEntities(entries)) {
		links := make([]string, len(group.EntryIDs))
		for i, id := range group.EntryIDs {
			links[i] = fmt.Sprintf("[url=%s/index.php?topic=%d]%d[/url]", r.forumURL, byID[id].TopicID, i+1)
		}

		rows = append(rows, fmt.Sprintf("[tr][td][b]%s[/b][/td][td]%d[/td][td]%s[/td][/tr]",
			group.Author, group.Size(), strings.Join(links, ", ")))
	}

	return strings.Join(append(rows, "[/table]"), "\n")
}

func ticketsTable(ranges []draw.TicketRange) string {
	if len(ranges) == 0 {
		return "[table]\n[tr][td]...[/td][/tr]\n[/table]"
	}

	rows := []string{
		"[table]",
		"[tr]",
		"[td][b]Usuário[/b][/td]",
		"[td][b]Tickets[/b][/td]",
		"[/tr]",
		"[tr]",
		"[td]________________[/td]",
		"[td]________________[/td]",
		"[/tr]",
	}

	for _, r := range ranges {
		tickets := strconv.Itoa(r.First)
		if r.Size() > 1 {
			tickets = fmt.Sprintf("%d ~ %d", r.First, r.Last)
		}

		rows = append(rows, fmt.Sprintf("[tr][td][b]%s[/b][/td][td]%s[/td][/tr]", r.Author, tickets))
	}

	return strings.Join(append(rows, "[/table]"), "\n")
}
