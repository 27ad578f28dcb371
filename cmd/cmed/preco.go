package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"precomed/internal/dto"
	"precomed/internal/model"
	"precomed/internal/normalize"
	"precomed/internal/repository"
	"precomed/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type precoOpcoes struct {
	ggrem    string
	aliquota string
	tipo     string
	valor    string
	usuario  string
}

func novoPrecoCmd(a *app) *cobra.Command {
	var o precoOpcoes
	cmd := &cobra.Command{
		Use:   "preco",
		Short: "Atualiza o preço com impostos (PF ou PMVG) de um produto na data de hoje",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.atualizarPreco(cmd.Context(), o)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.Mensagem)
			if res.Alerta != "" {
				fmt.Fprintln(out, res.Alerta)
			}
			if !res.Sucesso {
				return fmt.Errorf("atualização recusada (%s)", res.Erro)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.ggrem, "ggrem", "", "código GGREM do produto")
	f.StringVar(&o.aliquota, "aliquota", "", `alíquota de ICMS: id, valor ("17", "17,5") ou "sem"`)
	f.StringVar(&o.tipo, "tipo", "PF", "PF | PMVG")
	f.StringVar(&o.valor, "valor", "", `novo valor com impostos ("12,34" ou "12.34")`)
	f.StringVar(&o.usuario, "usuario", os.Getenv("USER"), "responsável pela alteração")
	f.Float64("limite-variacao", 50, "variação de PF (%) que gera aviso (PRICE_VARIATION_ALERT_PCT)")
	_ = cmd.MarkFlagRequired("ggrem")
	_ = cmd.MarkFlagRequired("aliquota")
	_ = cmd.MarkFlagRequired("valor")
	return cmd
}

func (a *app) atualizarPreco(ctx context.Context, o precoOpcoes) (dto.ResultadoAtualizacaoPreco, error) {
	aliquotaID, err := resolverAliquota(ctx, a.entidades, o.aliquota)
	if err != nil {
		return dto.ResultadoAtualizacaoPreco{}, err
	}
	valor := normalize.Decimal(o.valor)
	if valor == nil {
		return dto.ResultadoAtualizacaoPreco{}, fmt.Errorf("valor inválido: %q", o.valor)
	}

	svc := service.NewPrecoService(a.db, a.produtos, a.entidades, a.precos, a.historico, a.cache, a.cfg.LimiteVariacao())
	return svc.AtualizarPreco(ctx, dto.AtualizarPrecoRequest{
		CodigoGGREM: o.ggrem,
		AliquotaID:  aliquotaID,
		TipoPreco:   strings.ToUpper(strings.TrimSpace(o.tipo)),
		Valor:       *valor,
		Usuario:     o.usuario,
	}), nil
}

// resolverAliquota accepts a rate id, a rate value or "sem" for the tax-free series.
func resolverAliquota(ctx context.Context, entidades repository.EntidadeRepository, s string) (string, error) {
	s = strings.TrimSpace(s)
	if id, err := uuid.Parse(s); err == nil {
		return id.String(), nil
	}
	if strings.EqualFold(s, "sem") {
		return model.SemAliquotaID.String(), nil
	}
	v := normalize.Decimal(strings.TrimSuffix(s, "%"))
	if v == nil {
		return "", fmt.Errorf("alíquota inválida: %q", s)
	}
	a, err := entidades.FindAliquotaByValor(ctx, *v)
	if err != nil {
		return "", errors.Join(fmt.Errorf("alíquota %s%% não cadastrada", v), err)
	}
	return a.ID.String(), nil
}
