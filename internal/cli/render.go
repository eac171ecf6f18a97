// Package cli renders flow views for the terminal.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/foxzi/tweetsift/internal/web/flow"
	"github.com/foxzi/tweetsift/internal/web/views"
)

// Styles contains the terminal styles
type Styles struct {
	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Dim       lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Card      lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Tab:       lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("241")),
		ActiveTab: lipgloss.NewStyle().Padding(0, 1).Bold(true).Background(lipgloss.Color("238")),
		Dim:       lipgloss.NewStyle().Faint(true),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
	}
}

// Renderer turns flow views into terminal output
type Renderer struct {
	styles *Styles
}

// NewRenderer creates a renderer with the default styles
func NewRenderer() *Renderer {
	return &Renderer{styles: NewStyles()}
}

// Search renders the outcome of a search submission
func (r *Renderer) Search(form *flow.SearchForm, resultURL string) string {
	switch {
	case form.Status == flow.SearchNavigateToResult:
		return r.styles.Success.Render("Search started: "+string(form.Handle)) + "\n" +
			r.styles.Dim.Render(resultURL)
	case form.TermInvalid():
		return r.styles.Error.Render(form.Errors["term"])
	case form.SubmitFailed:
		return r.styles.Error.Render(flow.MsgSearchFailed)
	}
	return ""
}

// Result renders a resolved result view. Only the selected tab is listed
// for a ready result.
func (r *Renderer) Result(view *flow.ResultView, copyURL string) string {
	var b strings.Builder

	switch view.Status {
	case flow.ResultNotFound:
		b.WriteString(r.styles.Error.Render("The search you were looking for does not exist!"))

	case flow.ResultEmptySearch:
		b.WriteString(r.styles.Title.Render(view.Term))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("No tweets were found for %q.", view.Term))

	case flow.ResultCollecting:
		b.WriteString(r.styles.Title.Render(view.Term))
		b.WriteString("\n")
		b.WriteString("We are collecting and classifying the tweets, this may take several minutes.\n")
		b.WriteString("Come back later: ")
		b.WriteString(r.styles.Dim.Render(copyURL))

	case flow.ResultReady:
		b.WriteString(r.styles.Title.Render(view.Term))
		b.WriteString("\n")

		tabs := make([]string, 0, len(view.Tabs))
		for _, t := range view.Tabs {
			label := fmt.Sprintf("%s (%d)", t.Label, len(t.Posts))
			if t.Label == view.Selected {
				tabs = append(tabs, r.styles.ActiveTab.Render(label))
			} else {
				tabs = append(tabs, r.styles.Tab.Render(label))
			}
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
		b.WriteString("\n\n")

		if active, ok := view.Active(); ok {
			if active.Empty() {
				b.WriteString(r.styles.Dim.Render(flow.MsgEmptyTab))
			}
			for _, id := range active.Posts {
				b.WriteString(views.TweetURL(id))
				b.WriteString("\n")
			}
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// History renders the search history as cards
func (r *Renderer) History(view *flow.HistoryView, baseURL string) string {
	if view.Failed {
		return r.styles.Error.Render(flow.MsgHistoryFailed)
	}
	if view.Empty() {
		return "There are no searches with results yet!"
	}

	cards := make([]string, 0, len(view.Searches))
	for _, s := range view.Searches {
		body := fmt.Sprintf("%s tweets about %s were classified\n%s\n%s",
			humanize.Comma(int64(s.Count)), s.SearchTerm,
			r.styles.Dim.Render(views.FormatDate(s.SubmittedAt)),
			r.styles.Dim.Render(baseURL+s.Handle.Path()))
		cards = append(cards, r.styles.Card.Render(body))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}
