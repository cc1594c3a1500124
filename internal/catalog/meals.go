package catalog

type Slot string

const (
	Breakfast      Slot = "cafe_manha"
	Lunch          Slot = "almoco"
	AfternoonSnack Slot = "cafe_tarde"
	Dinner         Slot = "jantar"
)

// Slots is the display order of the day's meals.
var Slots = []Slot{Breakfast, Lunch, AfternoonSnack, Dinner}

type Suggestion struct {
	Name     string `json:"nome"`
	Calories int    `json:"calorias"`
}

type SlotSuggestions struct {
	Slot        Slot         `json:"slot"`
	Label       string       `json:"label"`
	Suggestions []Suggestion `json:"sugestoes"`
}

var meals = map[Slot]SlotSuggestions{
	Breakfast: {Slot: Breakfast, Label: "Café da Manhã", Suggestions: []Suggestion{
		{"Pão integral com queijo branco", 250},
		{"Vitamina de banana com aveia", 220},
		{"Iogurte com frutas vermelhas", 180},
		{"Panqueca de aveia com mel", 210},
		{"Tapioca com ovo mexido e café preto", 260},
		{"Smoothie verde (espinafre, maçã e gengibre)", 150},
		{"Cuscuz com ovo cozido e suco natural", 280},
	}},
	Lunch: {Slot: Lunch, Label: "Almoço", Suggestions: []Suggestion{
		{"Peito de frango grelhado com legumes cozidos", 400},
		{"Filé de peixe assado e arroz integral", 380},
		{"Macarrão integral com molho natural e frango desfiado", 420},
		{"Carne magra com purê de batata e brócolis", 450},
		{"Omelete com legumes e arroz integral", 390},
		{"Salada colorida com grão-de-bico e atum", 320},
		{"Tirinhas de carne com quinoa e abóbora refogada", 410},
	}},
	AfternoonSnack: {Slot: AfternoonSnack, Label: "Café da Tarde", Suggestions: []Suggestion{
		{"Torradas com pasta de amendoim", 230},
		{"Iogurte natural com granola e mel", 200},
		{"Smoothie de frutas vermelhas", 170},
		{"Pão integral com peito de peru e chá verde", 250},
		{"Banana amassada com aveia e canela", 190},
		{"Bolinho de aveia e cacau caseiro", 210},
		{"Tapioca de coco com queijo coalho", 240},
	}},
	Dinner: {Slot: Dinner, Label: "Jantar", Suggestions: []Suggestion{
		{"Sopa de frango com legumes", 280},
		{"Omelete com salada verde", 250},
		{"Crepioca com frango desfiado", 270},
		{"Caldo de abóbora com gengibre", 230},
		{"Wrap integral de frango e salada", 300},
		{"Legumes assados com filé de peixe", 320},
		{"Purê de mandioquinha com carne moída magra", 350},
	}},
}

// Calories looks up the exact suggestion text for a slot. Free text that is
// not a suggestion counts as zero.
func Calories(slot Slot, text string) int {
	for _, s := range meals[slot].Suggestions {
		if s.Name == text {
			return s.Calories
		}
	}
	return 0
}

func Meals() []SlotSuggestions {
	out := make([]SlotSuggestions, 0, len(Slots))
	for _, s := range Slots {
		out = append(out, meals[s])
	}
	return out
}
