package configs

import "time"

var defaultModels = map[string]string{
	ProviderGemini:   "gemini-2.5-flash",
	ProviderOpenAI:   "gpt-4o-mini",
	ProviderLMStudio: "openai/gpt-oss-20b",
}

var defaultEmbeddingModels = map[string]string{
	ProviderGemini:   "text-embedding-004",
	ProviderOpenAI:   "text-embedding-3-small",
	ProviderLMStudio: "text-embedding-nomic-embed-text-v1.5@q8_0",
}

const (
	AgentDescription = "Analista Corporativo de IA, especialista em análise de documentos estratégicos, " +
		"geração de insights e recomendações para tomada de decisão empresarial. Utiliza RAG " +
		"(Retrieval-Augmented Generation) para fornecer respostas precisas e embasadas nos documentos da empresa."

	ExpectedOutput = "Relatório estruturado em Markdown com análise profissional, dados quantitativos quando " +
		"disponíveis, e recomendações estratégicas claras."

	PreviewQuestion = "Com base em todas as análises anteriores, apresente um resumo executivo de no máximo " +
		"10 linhas para a diretoria."
)

var AgentInstructions = []string{
	"Você é um analista corporativo sênior especializado em inteligência artificial e tecnologia.",
	"Sempre responda em português brasileiro (pt-BR) com linguagem profissional e objetiva.",
	"Estruture suas respostas com títulos, subtítulos e bullet points quando apropriado.",
	"Cite dados numéricos e estatísticas sempre que disponíveis nos documentos.",
	"Ao apresentar análises, separe em: Contexto, Dados Relevantes, Análise e Conclusão.",
	"Se não encontrar informações suficientes, indique claramente e sugira fontes alternativas.",
	"Mantenha um tom executivo adequado para apresentações em reuniões de diretoria.",
	"Priorize insights acionáveis que possam guiar decisões estratégicas.",
	"Não invente dados, baseie-se exclusivamente no conteúdo dos documentos fornecidos.",
}

var AnalysisQuestions = []string{
	"Faça um resumo executivo dos documentos analisados, destacando os pontos mais relevantes para tomada de decisão estratégica.",
	"Quais são os valores de investimento em IA ao longo dos anos? Apresente uma análise de tendência com os dados disponíveis.",
	"Quais os principais setores que mais investem em IA? Identifique oportunidades e riscos para cada setor.",
	"Quais são as principais tecnologias emergentes mencionadas nos documentos? Como elas podem impactar o mercado nos próximos 2-3 anos?",
	"Com base nos dados analisados, quais recomendações estratégicas você faria para uma empresa que deseja investir em IA?",
}

// Default returns a fresh configuration holding every default value. Model names are resolved per
// provider during Load.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    ProviderGemini,
			Temperature: 0.3,
		},
		Knowledge: KnowledgeConfig{
			Dir:          "knowledge",
			Pattern:      "*.pdf",
			VectorStore:  StoreSQLite,
			StoreURI:     "data/vectors.db",
			Table:        "docs_empresarial_v2",
			MaxResults:   15,
			ChunkSize:    1000,
			ChunkOverlap: 150,
			QdrantHost:   "localhost",
			QdrantPort:   6334,
		},
		Agent: AgentConfig{
			Name:            "Analista Corporativo IA",
			Description:     AgentDescription,
			Instructions:    append([]string(nil), AgentInstructions...),
			ExpectedOutput:  ExpectedOutput,
			HistoryTurns:    5,
			PreviewQuestion: PreviewQuestion,
			Retry: RetryConfig{
				MaxAttempts: 3,
				Delay:       3 * time.Second,
				MaxDelay:    30 * time.Second,
				Exponential: true,
			},
		},
		Output: OutputConfig{
			ReportsDir: "reports",
			LogsDir:    "logs",
			LogLevel:   "info",
			HistoryDB:  "data/history.db",
		},
		Questions: append([]string(nil), AnalysisQuestions...),
	}
}
