package main

import (
	"os"

	_ "time/tzdata" // APP_TZ must resolve on minimal images

	"contact-mail-backend/internal/cmd"
)

// @title           Contact Mail API
// @version         1.0
// @description     Contact form endpoint: validation, HTML rendering and email delivery with SMTP and sendmail fallback.
// @host            localhost:8080
// @BasePath        /
func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
