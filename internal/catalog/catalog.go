// Package catalog holds the static challenge programs and meal suggestions.
package catalog

import "sort"

type Program struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Days        int      `json:"days"`
	Tasks       []string `json:"tasks"`
}

// Task returns the task for a 1-indexed day; the task list repeats.
func (p Program) Task(day int) string {
	if len(p.Tasks) == 0 || day < 1 {
		return ""
	}
	return p.Tasks[(day-1)%len(p.Tasks)]
}

const (
	Gratitude21 = "21_days_gratitude"
	LightMind7  = "7_days_light_mind"
	SelfCare30  = "30_days_selfcare"
)

var programs = map[string]Program{
	Gratitude21: {
		Type:        Gratitude21,
		Name:        "21 Dias de Gratidão",
		Description: "Pratique gratidão todos os dias por 21 dias",
		Days:        21,
		Tasks: []string{
			"Liste 3 coisas boas do dia",
			"Envie uma mensagem positiva para alguém",
			"Observe algo bonito na natureza",
			"Agradeça por uma refeição",
			"Reconheça um ato de gentileza",
		},
	},
	LightMind7: {
		Type:        LightMind7,
		Name:        "7 Dias para Mente Leve",
		Description: "Uma semana focada em leveza mental e emocional",
		Days:        7,
		Tasks: []string{
			"Pratique 5 minutos de respiração",
			"Escreva seus pensamentos sem filtro",
			"Faça uma atividade que ama",
			"Desconecte-se das redes sociais por 2 horas",
			"Pratique o perdão (a si mesmo ou outros)",
		},
	},
	SelfCare30: {
		Type:        SelfCare30,
		Name:        "30 Dias de Autocuidado",
		Description: "Um mês dedicado a cuidar de você",
		Days:        30,
		Tasks: []string{
			"Beba 8 copos de água",
			"Durma pelo menos 7 horas",
			"Faça uma refeição saudável",
			"Movimente seu corpo (caminhada, dança, yoga)",
			"Reserve 15 minutos só para você",
		},
	},
}

func LookupProgram(challengeType string) (Program, bool) {
	p, ok := programs[challengeType]
	return p, ok
}

// Programs lists every program ordered by length.
func Programs() []Program {
	out := make([]Program, 0, len(programs))
	for _, p := range programs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Days < out[j].Days })
	return out
}
