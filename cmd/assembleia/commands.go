package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gestaozabele/condominio/internal/auth"
	"github.com/gestaozabele/condominio/internal/bootstrap"
	"github.com/gestaozabele/condominio/internal/config"
	"github.com/gestaozabele/condominio/internal/relatorio"
)

func openStore(ctx context.Context) (*bootstrap.Store, error) {
	dbCfg, err := config.LoadDatabase()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return bootstrap.OpenStore(ctx, dbCfg)
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica o schema no banco configurado em DB_DRIVER/DB_DSN",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			log.Info().Msg("schema aplicado")
			return nil
		},
	}
}

func listCommand() *cobra.Command {
	var condominio string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lista assembleias",
		RunE: func(cmd *cobra.Command, args []string) error {
			condominioID := uuid.Nil
			if condominio != "" {
				id, err := uuid.Parse(condominio)
				if err != nil {
					return fmt.Errorf("--condominio inválido: %w", err)
				}
				condominioID = id
			}

			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			items, err := store.ListAssembleias(cmd.Context(), condominioID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tAGENDADA PARA\tTÍTULO")
			for _, a := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.Status, a.AgendadaPara.Format(time.RFC3339), a.Titulo)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&condominio, "condominio", "", "filtra por condomínio")
	return cmd
}

func exportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <assembleia-id>",
		Short: "Gera o PDF de resultados de uma assembleia encerrada",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("id inválido: %w", err)
			}

			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			data, nome, err := relatorio.NewExporter(store).PDF(cmd.Context(), id)
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = nome
			} else if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, nome)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			log.Info().Str("arquivo", path).Int("bytes", len(data)).Msg("relatório gerado")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "arquivo ou diretório de saída")
	return cmd
}

func tokenCommand() *cobra.Command {
	var (
		subject string
		roles   string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite um JWT de desenvolvimento",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, defaultTTL, err := config.LoadJWT()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = defaultTTL
			}

			sub := uuid.New()
			if subject != "" {
				if sub, err = uuid.Parse(subject); err != nil {
					return fmt.Errorf("--sub inválido: %w", err)
				}
			}

			var papeis []string
			for _, r := range strings.Split(roles, ",") {
				if r = strings.ToUpper(strings.TrimSpace(r)); r != "" {
					papeis = append(papeis, r)
				}
			}

			token, err := auth.NewJWTManager(secret, ttl).GenerateAccessToken(sub, papeis)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			log.Debug().Str("sub", sub.String()).Strs("roles", papeis).Dur("ttl", ttl).Msg("token emitido")
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "", "id do usuário (padrão: aleatório)")
	cmd.Flags().StringVar(&roles, "roles", "MORADOR", "papéis separados por vírgula")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "validade do token (padrão: JWT_ACCESS_TTL)")
	return cmd
}
