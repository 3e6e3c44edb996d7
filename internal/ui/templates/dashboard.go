// Package templates holds the dashboard page shell. Components are written
// directly against the templ runtime; the dynamic parts of the page arrive
// later as datastar SSE patches, so the shell itself is static markup.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const dashboardPage = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Tasty Bites Sales Projections</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.2/bundles/datastar.js"></script>
<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f7f7f8;color:#1c1c1e}
header{padding:1rem 2rem;background:#fff;border-bottom:1px solid #e3e3e6}
main{display:grid;grid-template-columns:260px 1fr;gap:1.5rem;padding:1.5rem 2rem}
aside{background:#fff;border:1px solid #e3e3e6;border-radius:8px;padding:1rem}
aside label{display:block;margin:.75rem 0 .25rem;font-weight:600}
aside input,aside select{width:100%}
button{margin-top:1rem;padding:.5rem 1rem;border:0;border-radius:6px;background:#c0392b;color:#fff;cursor:pointer}
.cards{display:grid;grid-template-columns:repeat(3,1fr);gap:1rem}
.card{background:#fff;border:1px solid #e3e3e6;border-radius:8px;padding:1rem}
.card.empty,.card.error{grid-column:1/-1;text-align:center;color:#6e6e73}
.card-title{font-weight:700;margin-bottom:.5rem}
.card-metric{display:flex;justify-content:space-between;margin:.25rem 0}
.sparkline{width:100%;height:40px;color:#c0392b}
#forecast-panel{background:#fff;border:1px solid #e3e3e6;border-radius:8px;padding:1rem;margin-top:1.5rem;min-height:320px}
</style>
</head>
<body data-signals="{forecastData:[],summariesData:[],recordCount:0}">
<header><h1>Explore Tasty Bites Sales Performance and Projections</h1></header>
<main>
<aside>
<h2>Filters</h2>
<label for="f-brand">Truck Brand</label>
<input id="f-brand" data-bind-brands placeholder="All">
<label for="f-city">City</label>
<input id="f-city" data-bind-city placeholder="All">
<label for="f-category">Item Category</label>
<input id="f-category" data-bind-categories placeholder="All">
<label for="f-min-year">Year Range</label>
<input id="f-min-year" type="number" data-bind-min_year placeholder="min">
<input id="f-max-year" type="number" data-bind-max_year placeholder="max">
<button data-on-click="@get('/sse/apply?brands='+$brands+'&city='+$city+'&categories='+$categories+'&min_year='+$min_year+'&max_year='+$max_year)">Apply Selection</button>
</aside>
<section>
<h2>Top Product Subcategories Sold by Trucks</h2>
<div class="cards" id="segment-cards"><div class="card empty">Select filters and apply to view results.</div></div>
<div id="forecast-panel">
<h2>Sales Forecast for the Next Year with Actual Data</h2>
<div id="forecast-chart" data-text="$recordCount ? $forecastData.length + ' category forecasts loaded' : 'No projection yet'"></div>
</div>
</section>
</main>
</body>
</html>`

// Dashboard renders the full page shell.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardPage)
		return err
	})
}
