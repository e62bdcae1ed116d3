package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	unreadStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	cardStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)

	sentimentStyles = map[domain.Sentiment]lipgloss.Style{
		domain.SentimentPositive: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		domain.SentimentNeutral:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		domain.SentimentNegative: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
)

// render writes v as JSON or YAML, or calls text for the human format.
func render(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}

func userCard(u *domain.User) string {
	lines := []string{
		titleStyle.Render(u.Username),
		labelStyle.Render("name  ") + u.Name,
		labelStyle.Render("email ") + u.Email,
		labelStyle.Render("role  ") + u.Role,
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func writeFeedback(w io.Writer, list []domain.Feedback) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "no feedback")
		return err
	}
	for _, f := range list {
		status := "pending"
		if f.Acknowledged {
			status = successStyle.Render("acknowledged")
		}
		who := fmt.Sprintf("employee %d", f.EmployeeID)
		if f.Employee != nil && f.Employee.Username != "" {
			who = f.Employee.Username
		}
		if _, err := fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
			titleStyle.Render(fmt.Sprintf("#%d", f.ID)),
			f.CreatedAt.Format("2006-01-02"),
			who,
			sentimentStyles[f.Sentiment].Render(string(f.Sentiment)),
			status,
		); err != nil {
			return err
		}
		fmt.Fprintf(w, "    %s %s\n", labelStyle.Render("strengths:"), f.Strengths)
		fmt.Fprintf(w, "    %s %s\n", labelStyle.Render("improvements:"), f.Improvements)
		if len(f.Tags) > 0 {
			names := make([]string, 0, len(f.Tags))
			for _, t := range f.Tags {
				names = append(names, t.Name)
			}
			fmt.Fprintf(w, "    %s %s\n", labelStyle.Render("tags:"), strings.Join(names, ", "))
		}
		if f.Comment != "" {
			fmt.Fprintf(w, "    %s %s\n", labelStyle.Render("comment:"), f.Comment)
		}
	}
	return nil
}

func writeTags(w io.Writer, tags []domain.Tag) error {
	if len(tags) == 0 {
		_, err := fmt.Fprintln(w, "no tags")
		return err
	}
	for _, t := range tags {
		if _, err := fmt.Fprintf(w, "%s  %s\n", labelStyle.Render(fmt.Sprintf("#%d", t.ID)), t.Name); err != nil {
			return err
		}
	}
	return nil
}

func writeUsers(w io.Writer, users []domain.User) error {
	for _, u := range users {
		if _, err := fmt.Fprintf(w, "%s  %s  %s\n", titleStyle.Render(fmt.Sprintf("#%d", u.ID)), u.Username, u.Name); err != nil {
			return err
		}
	}
	return nil
}

func writeInbox(w io.Writer, inbox domain.Inbox) error {
	header := fmt.Sprintf("%d unread", inbox.Unread)
	if inbox.Unread > 0 {
		header = unreadStyle.Render(header)
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	for _, n := range inbox.Items {
		marker := " "
		if !n.Read {
			marker = unreadStyle.Render("•")
		}
		if _, err := fmt.Fprintf(w, "%s #%d  %s  %s\n", marker, n.ID, n.CreatedAt.Format("2006-01-02 15:04"), n.Message); err != nil {
			return err
		}
	}
	return nil
}
