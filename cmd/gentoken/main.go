// Command gentoken issues an operator token for the admin API, signed with JWT_SECRET.
//
//	JWT_SECRET=... go run ./cmd/gentoken --usuario maria --rol administrador
package main

import (
	"fmt"
	"os"
	"time"

	"precomed/internal/config"
	"precomed/internal/middleware"

	"github.com/spf13/cobra"
)

func novoCmd() *cobra.Command {
	var (
		usuario string
		rol     string
		horas   int
	)
	cmd := &cobra.Command{
		Use:          "gentoken",
		Short:        "Emite um token JWT para a API administrativa",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rol != middleware.RolAdministrador && rol != middleware.RolConsulta {
				return fmt.Errorf("rol desconhecido: %q", rol)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if horas <= 0 {
				horas = cfg.JWTExpirationHours
			}
			tok, err := middleware.EmitirToken(cfg.JWTSecret, usuario, rol, time.Duration(horas)*time.Hour)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&usuario, "usuario", "", "nome gravado como autor das alterações de preço")
	cmd.Flags().StringVar(&rol, "rol", middleware.RolConsulta, "administrador | consulta")
	cmd.Flags().IntVar(&horas, "horas", 0, "validade em horas (padrão JWT_EXPIRATION_HOURS)")
	_ = cmd.MarkFlagRequired("usuario")
	return cmd
}

func main() {
	if err := novoCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
