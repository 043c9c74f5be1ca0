package clients

import (
	"context"
	"fmt"
	"strings"
)

// Interface is a destination that is told about finished runs.
type Interface interface {
	Name() string
	Notify(ctx context.Context, n Notification) error
}

type Notification struct {
	RunID      string
	Agent      string
	Model      string
	Total      int
	Succeeded  int
	ReportPath string
	ReportURL  string
	Failed     []string
	Err        string
	RecentLogs []string
}

func (n Notification) Message() string {
	var b strings.Builder
	if n.Err != "" {
		fmt.Fprintf(&b, "🚨 **%s** analysis run failed: %s\n", n.Agent, n.Err)
		if len(n.RecentLogs) > 0 {
			b.WriteString("```\n")
			b.WriteString(strings.Join(n.RecentLogs, "\n"))
			b.WriteString("\n```\n")
		}
		fmt.Fprintf(&b, "Run: `%s`", n.RunID)
		return b.String()
	}
	icon := "✅"
	if n.Succeeded < n.Total {
		icon = "⚠️"
	}
	fmt.Fprintf(&b, "%s **%s** finished an analysis run: %d/%d questions answered.\n", icon, n.Agent, n.Succeeded, n.Total)
	fmt.Fprintf(&b, "Model: `%s`\n", n.Model)
	if n.ReportURL != "" {
		fmt.Fprintf(&b, "Report: %s\n", n.ReportURL)
	} else if n.ReportPath != "" {
		fmt.Fprintf(&b, "Report: `%s`\n", n.ReportPath)
	}
	for _, q := range n.Failed {
		fmt.Fprintf(&b, "❌ %s\n", q)
	}
	fmt.Fprintf(&b, "Run: `%s`", n.RunID)
	return b.String()
}
