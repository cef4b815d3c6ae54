package api

import (
	"context"

	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/models"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/panel"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/session"
)

type pageData struct {
	Title      string
	HasKey     bool
	KeyWarning string
	Warning    string
	Features   []featureOption
	Panel      *panelView
	Footer     string
}

type featureOption struct {
	Slug     string
	Name     string
	Selected bool
}

type panelView struct {
	Slug      string
	Meta      panel.Meta
	Input     string
	Image     *models.Image
	CanExport bool
	Entries   []entryView
}

type entryView struct {
	InputLabel  string
	Input       string
	OutputLabel string
	Output      string
	Image       *models.Image
}

func (h *Handler) buildPage(ctx context.Context, sess *session.Session) (*pageData, error) {
	flash := sess.TakeFlash()
	data := &pageData{
		Title:      appTitle,
		HasKey:     sess.HasKey(),
		KeyWarning: keyWarning,
		Warning:    flash.Warning,
		Footer:     footerMessage,
	}
	if !data.HasKey {
		return data, nil
	}

	selected := sess.Feature()
	for _, f := range models.Features {
		data.Features = append(data.Features, featureOption{
			Slug:     f.Slug(),
			Name:     f.String(),
			Selected: f == selected,
		})
	}

	p := h.panels.For(selected)
	entries, err := p.History(ctx, sess.ID)
	if err != nil {
		return nil, err
	}

	meta := p.Meta()
	view := &panelView{
		Slug:  selected.Slug(),
		Meta:  meta,
		Input: sess.Input(selected),
		Image: flash.Image,
	}
	if _, ok := p.(panel.Exporter); ok && len(entries) > 0 {
		view.CanExport = true
	}
	for i, e := range entries {
		in, out := meta.Labels(i + 1)
		view.Entries = append(view.Entries, entryView{
			InputLabel:  in,
			Input:       e.Input,
			OutputLabel: out,
			Output:      e.Output,
			Image:       e.Image,
		})
	}
	data.Panel = view
	return data, nil
}
