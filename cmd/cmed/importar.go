package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"precomed/internal/dto"
	"precomed/internal/infra"
	"precomed/internal/service"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func novoImportarCmd(a *app) *cobra.Command {
	var migrar, semProgresso bool
	cmd := &cobra.Command{
		Use:   "importar",
		Short: "Importa o arquivo CSV da CMED",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if migrar {
				if err := infra.RunMigrations(a.db); err != nil {
					return fmt.Errorf("migrações: %w", err)
				}
			}
			var barra io.Writer
			if !semProgresso {
				barra = cmd.ErrOrStderr()
			}
			return a.importar(cmd.Context(), cmd.OutOrStdout(), barra)
		},
	}

	f := cmd.Flags()
	f.String("csv", "", "arquivo CSV (IMPORT_CSV)")
	f.Int("skip", 72, "linhas de cabeçalho antes dos dados (IMPORT_SKIP)")
	f.String("encoding", "", "utf-8 | latin1 | windows-1252 (IMPORT_ENCODING)")
	f.Int("commit-a-cada", 100, "linhas processadas por commit (IMPORT_COMMIT_EVERY)")
	f.Bool("auditar", false, "grava histórico de cada preço com impostos alterado (IMPORT_AUDIT_HISTORY)")
	f.BoolVar(&migrar, "migrar", false, "aplica as migrações antes de importar")
	f.BoolVar(&semProgresso, "sem-progresso", false, "não exibe a barra de progresso")
	return cmd
}

// importar runs one import of the configured file. barra receives the progress bar;
// nil hides it.
func (a *app) importar(ctx context.Context, out, barra io.Writer) error {
	arq, err := os.Open(a.cfg.ImportCSV)
	if err != nil {
		return fmt.Errorf("abrindo %s: %w", a.cfg.ImportCSV, err)
	}
	defer arq.Close()

	var r io.Reader = arq
	if barra != nil {
		if st, err := arq.Stat(); err == nil {
			bar := progressbar.NewOptions64(st.Size(),
				progressbar.OptionSetWriter(barra),
				progressbar.OptionSetDescription("importando"),
				progressbar.OptionShowBytes(true),
				progressbar.OptionSetWidth(30),
				progressbar.OptionThrottle(100*time.Millisecond),
				progressbar.OptionOnCompletion(func() { fmt.Fprintln(barra) }),
			)
			defer bar.Finish()
			r = io.TeeReader(arq, bar)
		}
	}

	svc := service.NewImportacaoService(a.db, a.entidades, a.produtos, a.precos, a.historico, a.cache,
		service.ImportacaoConfig{
			Pular:            a.cfg.ImportSkip,
			MinColunas:       a.cfg.ImportMinColumns,
			CommitACada:      a.cfg.ImportCommitEvery,
			Encoding:         a.cfg.ImportEncoding,
			AuditarHistorico: a.cfg.ImportAuditHistory,
			Usuario:          a.cfg.ImportUser,
		})
	resumo, err := svc.Importar(ctx, r)
	if err != nil {
		return err
	}
	imprimirResumo(out, resumo)
	return nil
}

func imprimirResumo(out io.Writer, r *dto.ResumoImportacao) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Execução\t%s\n", r.ExecucaoID)
	fmt.Fprintf(w, "Linhas processadas\t%d\n", r.Processadas)
	fmt.Fprintf(w, "Sucesso\t%d\n", r.Sucesso)
	fmt.Fprintf(w, "Erros\t%d\n", r.Erros)
	fmt.Fprintf(w, "Rejeitadas\t%d\n", r.Rejeitadas)
	fmt.Fprintf(w, "Descartadas (curtas)\t%d\n", r.Descartadas)
	fmt.Fprintf(w, "Produtos criados\t%d\n", r.ProdutosCriados)
	fmt.Fprintf(w, "Produtos atualizados\t%d\n", r.ProdutosAtualizados)
	fmt.Fprintf(w, "Preços gravados\t%d\n", r.PrecosGravados)
	fmt.Fprintf(w, "Duração\t%s\n", r.Duracao.Round(time.Millisecond))
	_ = w.Flush()
}
