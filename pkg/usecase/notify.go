package usecase

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/cyberportal/pkg/domain/model"
	"github.com/secmon-lab/cyberportal/pkg/domain/types"
	"github.com/secmon-lab/cyberportal/pkg/service/slack"
	goslack "github.com/slack-go/slack"
)

var severityEmoji = map[types.Severity]string{
	types.SeverityCritical: ":red_circle:",
	types.SeverityHigh:     ":large_orange_circle:",
	types.SeverityMedium:   ":large_yellow_circle:",
	types.SeverityLow:      ":large_green_circle:",
}

func incidentFields(x *model.Incident) []*goslack.TextBlockObject {
	analyst := x.AssignedAnalyst
	if analyst == "" {
		analyst = model.UnassignedAnalyst
	}

	fields := []*goslack.TextBlockObject{
		goslack.NewTextBlockObject(goslack.MarkdownType, "*Category*\n"+x.Category.String(), false, false),
		goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("*Severity*\n%s %s", severityEmoji[x.Severity], x.Severity), false, false),
		goslack.NewTextBlockObject(goslack.MarkdownType, "*Status*\n"+x.Status.String(), false, false),
		goslack.NewTextBlockObject(goslack.MarkdownType, "*Analyst*\n"+analyst, false, false),
	}
	if x.Unit != "" {
		fields = append(fields, goslack.NewTextBlockObject(goslack.MarkdownType, "*Unit*\n"+x.Unit, false, false))
	}
	if x.AnalysisResult != nil {
		fields = append(fields, goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("*AI Score*\n%d%%", x.AnalysisResult.Confidence), false, false))
	}
	return fields
}

func contextBlock(x *model.Incident, url string) *goslack.ContextBlock {
	elems := []goslack.MixedElement{
		goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("Reported %s %s", x.Date, x.Time), false, false),
	}
	if url != "" {
		elems = append(elems, goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("<%s|Open in portal>", url), false, false))
	}
	return goslack.NewContextBlock("", elems...)
}

// buildSubmittedBlocks renders the notification for a newly submitted report
func buildSubmittedBlocks(x *model.Incident, url string) ([]goslack.Block, string) {
	text := fmt.Sprintf("New incident %s: %s (%s)", x.ID, x.Category, x.Severity)

	blocks := []goslack.Block{
		goslack.NewHeaderBlock(goslack.NewTextBlockObject(goslack.PlainTextType,
			fmt.Sprintf("New incident %s", x.ID), true, false)),
		goslack.NewSectionBlock(nil, incidentFields(x), nil),
		goslack.NewSectionBlock(goslack.NewTextBlockObject(goslack.MarkdownType,
			slack.TruncateText(x.Description, slack.MaxSectionTextBytes), false, false), nil, nil),
	}

	if x.AnalysisResult != nil && len(x.AnalysisResult.Indicators) > 0 {
		var b strings.Builder
		b.WriteString("*Indicators*\n")
		for _, ind := range x.AnalysisResult.Indicators {
			b.WriteString("• " + ind + "\n")
		}
		blocks = append(blocks, goslack.NewSectionBlock(goslack.NewTextBlockObject(goslack.MarkdownType,
			slack.TruncateText(b.String(), slack.MaxSectionTextBytes), false, false), nil, nil))
	}

	blocks = append(blocks, contextBlock(x, url))
	return blocks, text
}

// buildAssignedBlocks renders the notification for an analyst assignment
func buildAssignedBlocks(x *model.Incident, url string) ([]goslack.Block, string) {
	text := fmt.Sprintf("Incident %s assigned to %s", x.ID, x.AssignedAnalyst)

	blocks := []goslack.Block{
		goslack.NewSectionBlock(goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf(":bust_in_silhouette: *%s* assigned to *%s*", x.ID, x.AssignedAnalyst), false, false), nil, nil),
		goslack.NewSectionBlock(nil, incidentFields(x), nil),
	}
	if x.Notes != "" {
		blocks = append(blocks, goslack.NewSectionBlock(goslack.NewTextBlockObject(goslack.MarkdownType,
			slack.TruncateText("*Notes*\n"+x.Notes, slack.MaxSectionTextBytes), false, false), nil, nil))
	}
	blocks = append(blocks, contextBlock(x, url))
	return blocks, text
}
