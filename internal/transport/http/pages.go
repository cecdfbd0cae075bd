package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

var welcomePageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8" />
<meta name="viewport" content="width=device-width, initial-scale=1.0" />
<title>Vitae API</title>
<style>
body { font-family: Arial, sans-serif; margin: 0; background: linear-gradient(135deg,#1f6f54,#103b2d); color: #fff; min-height: 100vh; display: flex; flex-direction: column; }
main { flex: 1; padding: 80px 20px; text-align: center; }
a { color: #a8e6cf; }
footer { text-align: center; padding: 20px; font-size: 14px; opacity: 0.8; }
</style>
</head>
<body>
<main>
  <h1>Vitae</h1>
  <p>Share what you are reading, follow people worth reading with.</p>
  <p>Interactive API reference lives at <a href="/swagger/index.html">/swagger</a>.</p>
</main>
<footer>Vitae API</footer>
</body>
</html>`

func RegisterPages(e *echo.Echo) {
	e.GET("/", func(c echo.Context) error {
		return c.HTML(http.StatusOK, welcomePageHTML)
	})
}
