package server

import (
	"fmt"
	"net/http"

	"github.com/inisipanji/sawebagi/pkg/donation"
	"github.com/inisipanji/sawebagi/version"
)

const homepageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>sawebagi</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            max-width: 800px;
            margin: 50px auto;
            padding: 20px;
            line-height: 1.6;
            color: #333;
        }
        h1 {
            color: #2c3e50;
        }
        code {
            background-color: #f4f4f4;
            padding: 2px 4px;
            border-radius: 3px;
        }
        .status {
            background-color: #d4edda;
            border: 1px solid #c3e6cb;
            color: #155724;
            padding: 12px;
            border-radius: 4px;
            margin-top: 20px;
        }
    </style>
</head>
<body>
    <h1>sawebagi</h1>
    <p>Receives donation webhooks and hands them to the game server one at a time.</p>
    <ul>
        <li><code>POST /api</code> donation webhook (%s)</li>
        <li><code>GET /api</code> next pending donation, or <code>null</code></li>
        <li><code>GET /api/leaderboard</code> every donor, highest total first</li>
    </ul>
    <div class="status">
        <strong>Status:</strong> Service is running and ready to receive webhooks (%s)
    </div>
</body>
</html>`

// handleHomepage serves the homepage
func handleHomepage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, homepageTemplate, donation.SupportedPlatforms(), version.Version)
}
