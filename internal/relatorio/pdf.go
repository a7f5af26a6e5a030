package relatorio

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/gestaozabele/condominio/internal/assembleia"
)

const (
	margem      = 15.0
	larguraUtil = 210 - 2*margem
	colOpcao    = 55.0
	colBarra    = 85.0
	colValor    = larguraUtil - colOpcao - colBarra
	alturaLinha = 7.0
)

var (
	corVencedora = [3]int{46, 125, 50}
	corOpcao     = [3]int{176, 190, 197}
	corTrilho    = [3]int{236, 239, 241}
)

// RenderPDF gera o documento inteiro em memória. Em caso de erro nada é devolvido.
func RenderPDF(r Relatorio) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(r.Assembleia.Titulo, true)
	pdf.SetCreator("condominio", false)
	pdf.SetCreationDate(r.GeradoEm)
	pdf.SetModificationDate(r.GeradoEm)
	pdf.SetMargins(margem, margem, margem)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		texto := fmt.Sprintf("Gerado em %s UTC - página %d/{nb}", r.GeradoEm.Format("02/01/2006 15:04"), pdf.PageNo())
		pdf.CellFormat(0, 10, tr(texto), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	cabecalho(pdf, tr, r.Assembleia)

	if len(r.Itens) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.CellFormat(0, alturaLinha, tr("Nenhuma pauta cadastrada."), "", 1, "L", false, 0, "")
	}
	for i, item := range r.Itens {
		secao(pdf, tr, i+1, item)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("relatorio: renderizar pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("relatorio: gravar pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func cabecalho(pdf *fpdf.Fpdf, tr func(string) string, a assembleia.Assembleia) {
	pdf.SetTextColor(33, 33, 33)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, tr(a.Titulo), "", "L", false)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr("Data: "+a.AgendadaPara.Format("02/01/2006 15:04")+" UTC"), "", 1, "L", false, 0, "")
	if len(a.Topicos) > 0 {
		pdf.MultiCell(0, 6, tr("Tópicos: "+strings.Join(a.Topicos, "; ")), "", "L", false)
	}
	pdf.Ln(4)
}

func secao(pdf *fpdf.Fpdf, tr func(string) string, n int, item Item) {
	p, res := item.Pauta, item.Apuracao

	pdf.SetTextColor(33, 33, 33)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.MultiCell(0, 7, tr(fmt.Sprintf("%d. %s", n, p.Titulo)), "", "L", false)
	if p.Descricao != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(p.Descricao), "", "L", false)
	}
	pdf.Ln(2)

	for _, o := range res.Opcoes {
		vencedora := res.Vencedora != nil && *res.Vencedora == o.Opcao

		estilo := ""
		rotulo := o.Opcao
		if vencedora {
			estilo = "B"
			rotulo = "> " + o.Opcao
		}
		pdf.SetFont("Helvetica", estilo, 10)
		pdf.CellFormat(colOpcao, alturaLinha, tr(rotulo), "", 0, "L", false, 0, "")

		x, y := pdf.GetX(), pdf.GetY()
		barra(pdf, x, y+1.5, o.Percentual, vencedora)
		pdf.SetXY(x+colBarra, y)

		valor := fmt.Sprintf("%d %s (%s%%)", o.Votos, plural(o.Votos, "voto", "votos"), percentual(o.Percentual))
		pdf.CellFormat(colValor, alturaLinha, tr(valor), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "", 9)
	resumo := fmt.Sprintf("Total de votos: %d", res.Total)
	switch {
	case res.Vencedora == nil:
		resumo += " - sem votos registrados"
	case res.Empate:
		resumo += fmt.Sprintf(" - empate no primeiro lugar; prevalece %q pela ordem das opções", *res.Vencedora)
	default:
		resumo += fmt.Sprintf(" - vencedora: %s", *res.Vencedora)
	}
	pdf.MultiCell(0, 5, tr(resumo), "", "L", false)
	pdf.Ln(5)
}

// barra desenha o trilho e a parte proporcional ao percentual.
func barra(pdf *fpdf.Fpdf, x, y, pct float64, destaque bool) {
	const altura = alturaLinha - 3
	pdf.SetFillColor(corTrilho[0], corTrilho[1], corTrilho[2])
	pdf.Rect(x, y, colBarra-4, altura, "F")

	largura := (colBarra - 4) * pct / 100
	if largura <= 0 {
		return
	}
	cor := corOpcao
	if destaque {
		cor = corVencedora
	}
	pdf.SetFillColor(cor[0], cor[1], cor[2])
	pdf.Rect(x, y, largura, altura, "F")
}

func percentual(pct float64) string {
	return strings.Replace(fmt.Sprintf("%.1f", pct), ".", ",", 1)
}

func plural(n int, um, varios string) string {
	if n == 1 {
		return um
	}
	return varios
}
