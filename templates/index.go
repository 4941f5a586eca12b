// Package templates renders the HTML pages served by the web app.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/Akbar758742/multi-platform-video-downloader/internal/models"
)

// IndexPage renders the downloader page with a list of recent tasks.
func IndexPage(recent []models.DownloadTask) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, indexHead); err != nil {
			return err
		}
		for _, task := range recent {
			if err := writeTaskRow(w, task); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, indexTail)
		return err
	})
}

func writeTaskRow(w io.Writer, task models.DownloadTask) error {
	title := task.Title
	if title == "" {
		title = task.URL
	}
	link := ""
	if task.Status == models.StatusCompleted && task.FilePath != "" {
		link = fmt.Sprintf(` <a href="/api/download/%s">Download file</a>`, templ.EscapeString(task.ID))
	}
	_, err := fmt.Fprintf(w,
		`<li class="task task-%s"><span class="task-title">%s</span><span class="task-status">%s (%d%%)</span>%s</li>`+"\n",
		templ.EscapeString(string(task.Status)),
		templ.EscapeString(title),
		templ.EscapeString(string(task.Status)),
		task.Progress,
		link,
	)
	return err
}

const indexHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>Multi-Platform Video Downloader</title>
<link rel="stylesheet" href="/static/style.css"/>
</head>
<body>
<main class="container">
<h1>Video Downloader</h1>
<section class="url-form">
<input type="text" id="url-input" placeholder="Paste a video URL..." autocomplete="off"/>
<span id="platform-label">Waiting for URL...</span>
<button id="extract-btn" type="button">Get Video Info</button>
</section>
<section id="metadata" class="metadata hidden">
<img id="thumbnail" alt=""/>
<h2 id="video-title"></h2>
<p id="video-uploader"></p>
<p id="video-duration"></p>
<select id="format-select"></select>
<button id="download-btn" type="button">Download</button>
</section>
<section id="progress" class="progress hidden">
<div class="bar"><div id="progress-fill" class="fill"></div></div>
<p id="status-message"></p>
<button id="cancel-btn" type="button">Cancel</button>
<a id="file-link" class="hidden" href="#">Download file</a>
</section>
<section class="recent">
<h2>Recent downloads</h2>
<ul id="recent-list">
`

const indexTail = `</ul>
</section>
</main>
<script src="/static/app.js"></script>
</body>
</html>
`
