package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"linkup/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	ownBubble = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			MarginLeft(20)

	peerBubble = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("245"))
)

func renderMessage(m models.Message) string {
	body := m.Content
	if m.MediaURL != "" {
		body += "\n" + mutedStyle.Render("[media] "+m.MediaURL)
	}
	meta := mutedStyle.Render(fmt.Sprintf("%s · %s", m.DisplaySender, m.SentAt.Local().Format("15:04")))

	style := peerBubble
	if m.DisplaySender == "You" {
		style = ownBubble
	}
	return style.Render(meta + "\n" + body)
}

func renderPeer(p models.User) string {
	status := mutedStyle.Render("offline")
	if p.Online {
		status = successStyle.Render("online")
	}
	return titleStyle.Render(p.Name) + " " + mutedStyle.Render("@"+p.Username) + " " + status + "\n" + mutedStyle.Render(p.Status)
}

func renderFriendRequests(reqs []models.FriendRequest) string {
	rows := make([][]string, 0, len(reqs))
	for _, r := range reqs {
		rows = append(rows, []string{
			r.ID.String(),
			r.FromUserName,
			r.FromUser,
			r.ToUser,
			string(r.Status),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers("ID", "Name", "From", "To", "Status", "Created").
		Rows(rows...)
	return t.String()
}

func renderAccount(u *models.AccountUser) string {
	out := titleStyle.Render(u.FullName) + " " + mutedStyle.Render("@"+u.Username) + "\n"
	out += fmt.Sprintf("id:     %s\nemail:  %s\nstatus: %s", u.ID, u.Email, u.Status)
	if u.ProfileImage != "" {
		out += "\nimage:  " + u.ProfileImage
	}
	return out
}
