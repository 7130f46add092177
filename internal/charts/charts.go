// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package charts builds the ECharts snippets embedded in the admin stats
// page.
package charts

import (
	"html/template"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"cervejas/internal/models"
	"cervejas/internal/store"
)

// ScriptURL is the ECharts bundle the snippets expect on the page.
const ScriptURL = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"

// Snippet is a chart ready to drop into a template: a container element
// and the script that draws into it.
type Snippet struct {
	Element template.HTML
	Script  template.HTML
}

func initOpts(id string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		ChartID: id,
		Width:   "100%",
		Height:  "420px",
		Theme:   types.ThemeWesteros,
	})
}

// ViewsByPost draws the limit most viewed posts as a bar chart.
func ViewsByPost(posts []models.Post, limit int) Snippet {
	ranked := store.RankByViews(posts)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	titles := make([]string, 0, len(ranked))
	values := make([]opts.BarData, 0, len(ranked))
	for _, p := range ranked {
		titles = append(titles, p.Title)
		values = append(values, opts.BarData{Name: p.Title, Value: p.Views})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts("views-by-post"),
		charts.WithTitleOpts(opts.Title{Title: "Postagens mais lidas"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: 30, Interval: "0"},
		}),
	)
	bar.SetXAxis(titles).AddSeries("Visualizações", values)

	s := bar.RenderSnippet()
	return snippet(s.Element, s.Script)
}

// ViewsByCategory draws the share of views per category as a pie chart.
func ViewsByCategory(posts []models.Post) Snippet {
	totals := make(map[string]int)
	for _, p := range posts {
		totals[p.Category] += p.Views
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]opts.PieData, 0, len(names))
	for _, name := range names {
		items = append(items, opts.PieData{Name: name, Value: totals[name]})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		initOpts("views-by-category"),
		charts.WithTitleOpts(opts.Title{Title: "Visualizações por categoria"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	pie.AddSeries("Categorias", items)

	s := pie.RenderSnippet()
	return snippet(s.Element, s.Script)
}

func snippet(element, script string) Snippet {
	return Snippet{
		Element: template.HTML(element),
		Script:  template.HTML(script),
	}
}
