package report

import (
	"fmt"
	"strings"

	"DocAnalystAI/app/analysis"
)

const (
	title = "# 📊 Relatório de Análise — Inteligência Artificial"

	disclaimer = "> **Aviso**: Este relatório foi gerado automaticamente por um sistema de IA com base nos " +
		"documentos fornecidos. As análises e recomendações devem ser validadas por especialistas antes de " +
		"serem utilizadas para tomada de decisão.\n" +
		">\n" +
		"> As informações contidas neste documento são confidenciais e de uso interno. A reprodução ou " +
		"distribuição sem autorização prévia é proibida."

	displayLayout = "02/01/2006 às 15:04"
	dateLayout    = "2006-01-02"
)

// Metadata describes the run in the report header.
type Metadata struct {
	Model     string
	Agent     string
	SourceDir string
	Documents []string
}

// Render produces the Markdown report. The only clock it reads is summary.StartedAt, so the same
// summary always renders the same bytes.
func Render(summary *analysis.Summary, meta Metadata) string {
	generatedAt := summary.StartedAt.Format(displayLayout)

	var b strings.Builder
	b.WriteString(title + "\n\n---\n\n")
	b.WriteString("| Campo | Detalhe |\n")
	b.WriteString("| --- | --- |\n")
	row(&b, "Data de Geração", generatedAt)
	row(&b, "Modelo Utilizado", "`"+meta.Model+"`")
	row(&b, "Agente", meta.Agent)
	row(&b, "Documentos Analisados", documentsCell(meta))
	row(&b, "Total de Perguntas", fmt.Sprint(summary.Total()))
	row(&b, "Processadas com Sucesso", fmt.Sprint(summary.Succeeded()))
	b.WriteString("\n---\n\n")

	for _, r := range summary.Results {
		marker := "✅"
		if !r.Succeeded() {
			marker = "❌"
		}
		fmt.Fprintf(&b, "## %s %d. %s\n\n", marker, r.Number, r.Question)
		b.WriteString(r.Answer)
		b.WriteString("\n\n---\n\n")
	}

	b.WriteString("## 📋 Notas e Disclaimers\n\n")
	b.WriteString(disclaimer + "\n\n---\n\n")
	fmt.Fprintf(&b, "*Gerado automaticamente em %s por %s*", generatedAt, meta.Agent)
	return b.String()
}

func row(b *strings.Builder, field, value string) {
	fmt.Fprintf(b, "| **%s** | %s |\n", field, value)
}

func documentsCell(meta Metadata) string {
	dir := "Diretório `" + strings.TrimSuffix(meta.SourceDir, "/") + "/`"
	if len(meta.Documents) == 0 {
		return dir
	}
	return fmt.Sprintf("%s (%s)", dir, strings.Join(meta.Documents, ", "))
}

// FileName is the dated report name for the run.
func FileName(summary *analysis.Summary) string {
	return fmt.Sprintf("relatorio_analise_%s.md", summary.StartedAt.Format(dateLayout))
}
