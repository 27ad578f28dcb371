package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"precomed/internal/dto"
	"precomed/internal/normalize"
	"precomed/internal/repository"
	"precomed/internal/service"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func novoBuscarCmd(a *app) *cobra.Command {
	var (
		f                          dto.FiltroConsulta
		comCAP, aliquota, precoMax string
		comoJSON                   bool
	)
	cmd := &cobra.Command{
		Use:   "buscar",
		Short: "Consulta produtos e preços vigentes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if comCAP != "" {
				b, err := strconv.ParseBool(comCAP)
				if err != nil {
					return fmt.Errorf("--cap: %w", err)
				}
				f.ComCAP = &b
			}
			if aliquota != "" {
				if f.Aliquota = normalize.Decimal(aliquota); f.Aliquota == nil {
					return fmt.Errorf("--aliquota inválida: %q", aliquota)
				}
			}
			if precoMax != "" {
				if f.PrecoMaximo = normalize.Decimal(precoMax); f.PrecoMaximo == nil {
					return fmt.Errorf("--preco-maximo inválido: %q", precoMax)
				}
			}

			svc := service.NewConsultaService(repository.NewConsultaRepository(a.db), a.cache)
			itens, err := svc.Buscar(cmd.Context(), f)
			if err != nil {
				return err
			}
			if comoJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(itens)
			}
			imprimirItens(cmd.OutOrStdout(), itens)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.Substancia, "substancia", "", "trecho do nome da substância")
	fl.StringVar(&f.Laboratorio, "laboratorio", "", "trecho do nome do laboratório")
	fl.StringVar(&f.TipoProduto, "tipo", "", "tipo de produto exato")
	fl.StringVar(&comCAP, "cap", "", "true | false")
	fl.StringVar(&aliquota, "aliquota", "", "alíquota de ICMS exata")
	fl.StringVar(&precoMax, "preco-maximo", "", "teto do preço de referência")
	fl.StringVar(&f.OrdenarPor, "ordenar", dto.OrdenarPorProduto, "produto | preco | laboratorio")
	fl.BoolVar(&comoJSON, "json", false, "saída em JSON")
	return cmd
}

func texto(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(2)
}

func imprimirItens(out io.Writer, itens []dto.ProdutoConsultaItem) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GGREM\tPRODUTO\tAPRESENTAÇÃO\tLABORATÓRIO\tCAP\tICMS\tPF\tPMVG\tREFERÊNCIA")
	for _, i := range itens {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i.CodigoGGREM, i.Produto, i.Apresentacao, i.Laboratorio, i.CAP,
			texto(i.Aliquota), texto(i.PrecoFabrica), texto(i.PrecoPMVG), texto(i.PrecoReferencia))
	}
	_ = w.Flush()
	fmt.Fprintf(out, "%d linha(s)\n", len(itens))
}
