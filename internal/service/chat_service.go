package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jengzang/riskdash-backend/internal/config"
	"github.com/jengzang/riskdash-backend/internal/llm"
	"github.com/jengzang/riskdash-backend/internal/models"
	"github.com/jengzang/riskdash-backend/internal/repository"
)

const (
	assistantPersona = "Eres un asistente comunitario de seguridad ciudadana."
	forecastPersona  = "Eres un asistente comunitario."
)

// Quick answer kinds
const (
	QuickStatistics = "estadisticas"
	QuickForecast   = "prediccion"
	QuickSituation  = "situacion"
)

const quickOptions = "Opciones válidas: estadisticas, prediccion, situacion."

// ChatService answers citizen questions with snapshot context and the LLM
type ChatService struct {
	state       *State
	client      llm.ChatClient
	temperature float32
	topP        float32

	mu            sync.Mutex
	detector      *EntityDetector
	detectorTable *repository.FeatureTable
}

// NewChatService creates a chat service using the sampling settings of cfg
func NewChatService(state *State, client llm.ChatClient, cfg config.LLMConfig) *ChatService {
	return &ChatService{
		state:       state,
		client:      client,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
	}
}

func (s *ChatService) entityDetector(table *repository.FeatureTable) *EntityDetector {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detector == nil || s.detectorTable != table {
		s.detector = NewEntityDetector(table)
		s.detectorTable = table
	}
	return s.detector
}

// Ask detects entities in the question, summarizes the matching rows and
// relays the prompt. An explicit sub-region or crime type overrides detection.
func (s *ChatService) Ask(ctx context.Context, req models.ChatRequest) (string, error) {
	table, err := s.state.Table(ctx)
	if err != nil {
		return "", err
	}

	entities := s.entityDetector(table).Detect(req.Question)
	if sub := strings.ToUpper(strings.TrimSpace(req.SubRegion)); sub != "" {
		entities.SubRegion = sub
	}
	if crime := strings.ToUpper(strings.TrimSpace(req.CrimeType)); crime != "" {
		entities.CrimeType = crime
	}

	summary := Summarize(table.Rows(), entities.Filter())
	return s.client.Complete(ctx, llm.ChatRequest{
		System:      assistantPersona,
		User:        BuildPrompt(req.Question, entities, summary),
		Temperature: llm.Float32(s.temperature),
		TopP:        llm.Float32(s.topP),
	})
}

// Quick answers the canned dashboard questions; unknown kinds get the options message
func (s *ChatService) Quick(ctx context.Context, kind, subRegion string) (string, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	subRegion = strings.ToUpper(strings.TrimSpace(subRegion))

	switch kind {
	case QuickStatistics, QuickSituation:
		table, err := s.state.Table(ctx)
		if err != nil {
			return "", err
		}
		summary := Summarize(table.Rows(), models.SummaryFilter{SubRegion: subRegion})
		if kind == QuickStatistics {
			where := ""
			if subRegion != "" {
				where = " en " + subRegion
			}
			return fmt.Sprintf("Total de eventos%s: %d. Franja de mayor riesgo: %s.", where, summary.Total, summary.TimeSlot), nil
		}
		where := "el área"
		if subRegion != "" {
			where = subRegion
		}
		return fmt.Sprintf("Situación en %s: %d eventos. Riesgo mayor en %s. Zonas críticas: %s.",
			where, summary.Total, summary.TimeSlot, joinOrNoData(summary.TopSubRegions, ", ")), nil

	case QuickForecast:
		return s.client.Complete(ctx, llm.ChatRequest{
			System: forecastPersona,
			User:   fmt.Sprintf("Genera una predicción de seguridad ciudadana para los próximos meses en %s.", titleCase(s.state.Region())),
		})

	default:
		return quickOptions, nil
	}
}

// BuildPrompt renders the question, detected entities and summary for the LLM
func BuildPrompt(question string, e models.Entities, s models.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usuario pregunta: %s\n\n", question)

	b.WriteString("Entidades detectadas:\n")
	fmt.Fprintf(&b, "- Municipio: %s\n", orDefault(e.SubRegion, "no especificado"))
	fmt.Fprintf(&b, "- Tipo de delito: %s\n", orDefault(e.CrimeType, "no especificado"))
	fmt.Fprintf(&b, "- Grupo etario: %s\n", orDefault(e.AgeGroup, "no especificado"))
	fmt.Fprintf(&b, "- Franja horaria: %s\n", orDefault(e.TimeSlot, "no especificada"))
	fmt.Fprintf(&b, "- Género: %s\n\n", orDefault(e.Gender, "no especificado"))

	b.WriteString("Datos filtrados:\n")
	fmt.Fprintf(&b, "- Total de eventos registrados: %d\n", s.Total)
	fmt.Fprintf(&b, "- Franja horaria de mayor riesgo: %s\n", s.TimeSlot)
	fmt.Fprintf(&b, "- Municipios críticos relacionados: %s\n", joinOrNoData(s.TopSubRegions, ", "))
	fmt.Fprintf(&b, "- Género predominante: %s\n", s.Gender)
	fmt.Fprintf(&b, "- Grupo etario predominante: %s\n", s.AgeGroup)
	fmt.Fprintf(&b, "- Día de la semana crítico: %s\n", s.Weekday)
	fmt.Fprintf(&b, "- Delito predominante: %s\n", s.CrimeType)
	fmt.Fprintf(&b, "- Recomendaciones preventivas: %s\n\n", strings.Join(s.Recommendations, "; "))

	b.WriteString("Responde como asistente comunitario de seguridad ciudadana,\n")
	b.WriteString("con un tono claro, útil y preventivo, integrando los datos anteriores en la respuesta.\n")
	return b.String()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func joinOrNoData(values []string, sep string) string {
	if len(values) == 0 {
		return models.NoData
	}
	return strings.Join(values, sep)
}

// titleCase turns SANTANDER into Santander
func titleCase(s string) string {
	return cases.Title(language.Spanish).String(strings.ToLower(s))
}
