// Command folio runs the portfolio backend server.
package main

import (
	"context"

	"github.com/dalemusser/folio/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	app.Run(context.Background(), bootstrap.Hooks)
}
