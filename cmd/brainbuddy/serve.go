package main

import (
	"net/http"

	"github.com/spf13/cobra"

	httpadapter "github.com/PabloGalante/brainbuddy/internal/adapters/http"
	"github.com/PabloGalante/brainbuddy/internal/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	handler := httpadapter.NewServer(a.assistant, a.history)

	port := ":" + a.cfg.Port
	observability.Logger().Info("brainbuddy api listening", "port", a.cfg.Port)
	return http.ListenAndServe(port, handler)
}
