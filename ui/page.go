package ui

import (
	"bytes"
	"encoding/json"
	"html"
)

const pageCSS = `
:root { --bg: #ffffff; --fg: #1f2328; --muted: #59636e; --track: #e8e9eb; --bar: #2563eb; --btn: #f6f8fa; --border: #d1d9e0; }
[data-theme="dark"] { --bg: #1e1e1e; --fg: #e6edf3; --muted: #9198a1; --track: #2d2d2d; --bar: #4493f8; --btn: #2d2d2d; --border: #3d444d; }
html, body { margin: 0; height: 100%; background: var(--bg); color: var(--fg); font: 14px/1.4 "Segoe UI", system-ui, sans-serif; }
.container { display: flex; flex-direction: column; gap: 10px; padding: 18px 20px; height: 100%; box-sizing: border-box; }
h1 { font-size: 16px; font-weight: 600; margin: 0; }
.status { color: var(--muted); white-space: nowrap; overflow: hidden; text-overflow: ellipsis; min-height: 1.4em; }
.track { height: 8px; border-radius: 4px; background: var(--track); overflow: hidden; }
.bar { height: 100%; width: 0; background: var(--bar); transition: width 120ms linear; }
.buttons { margin-top: auto; display: flex; justify-content: flex-end; }
button { padding: 5px 16px; border: 1px solid var(--border); border-radius: 6px; background: var(--btn); color: var(--fg); font: inherit; }
button:disabled { opacity: 0.5; }
`

const pageJS = `
window.updateProgress = function (percent, status) {
    document.getElementById('bar').style.width = percent + '%';
    if (status) { document.getElementById('status').textContent = status; }
};
window.setCancelling = function (status) {
    var b = document.getElementById('cancel');
    if (b) { b.disabled = true; }
    document.getElementById('status').textContent = status;
};
function cancelRun() {
    window.external.invoke(JSON.stringify({type: 'cancel'}));
}
`

// renderPage builds the progress window's HTML.
func renderPage(cfg Config, darkMode bool) string {
	var buf bytes.Buffer

	theme := "light"
	if darkMode {
		theme = "dark"
	}
	heading := cfg.Heading
	if heading == "" {
		heading = cfg.Title
	}

	buf.WriteString(`<!DOCTYPE html>
<html lang="en" data-theme="` + theme + `">
<head>
    <meta charset="UTF-8">
    <title>` + html.EscapeString(cfg.Title) + `</title>
    <style>` + pageCSS + `</style>
</head>
<body>
    <div class="container">
        <h1>` + html.EscapeString(heading) + `</h1>
        <div class="status" id="status">Preparing...</div>
        <div class="track"><div class="bar" id="bar"></div></div>
`)
	if !cfg.HideCancel {
		buf.WriteString(`        <div class="buttons"><button id="cancel" onclick="cancelRun()">Cancel</button></div>
`)
	}
	buf.WriteString(`    </div>
    <script>` + pageJS + `</script>
</body>
</html>`)

	return buf.String()
}

// progressScript returns the script that moves the bar. percent is clamped
// to 0..100.
func progressScript(percent float64, status string) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return `window.updateProgress(` + formatFloat(percent) + `, ` + jsonString(status) + `);`
}

func cancellingScript(status string) string {
	return `window.setCancelling(` + jsonString(status) + `);`
}

// message is a message posted by the page through window.external.invoke.
type message struct {
	Type string `json:"type"`
}

func parseMessage(raw string) (message, bool) {
	var m message
	if err := json.Unmarshal([]byte(raw), &m); err != nil || m.Type == "" {
		return message{}, false
	}
	return m, true
}

func formatFloat(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
