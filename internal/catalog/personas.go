package catalog

import "strings"

// DefaultPersona is used for characters with no configured description.
const DefaultPersona = "A villager in Stardew Valley."

// Personas resolves a character's persona text. Overrides take precedence
// over the built-in table.
type Personas struct {
	overrides map[string]string
}

// NewPersonas returns a resolver layered over the built-in descriptions.
// Override keys match case-insensitively, since config loaders lowercase them.
func NewPersonas(overrides map[string]string) *Personas {
	cp := make(map[string]string, len(overrides))
	for k, v := range overrides {
		if v != "" {
			cp[strings.ToLower(strings.TrimSpace(k))] = v
		}
	}
	return &Personas{overrides: cp}
}

func (p *Personas) For(character string) string {
	if p != nil {
		if d, ok := p.overrides[strings.ToLower(character)]; ok {
			return d
		}
	}
	if d, ok := defaultPersonas[character]; ok {
		return d
	}
	return DefaultPersona
}

var defaultPersonas = map[string]string{
	"Abigail":   "A young woman who loves adventure, video games, and exploring. She's brave, independent, and has a rebellious streak. She enjoys playing the flute and going on adventures.",
	"Alex":      "An athletic young man who loves sports and working out. He's confident, sometimes cocky, but has a good heart. He dreams of being a professional athlete and loves football.",
	"Emily":     "A spiritual and creative woman who works as a bartender. She loves crystals, meditation, and fashion. She's optimistic, sees the good in everyone, and has a unique sense of style.",
	"Harvey":    "The town's doctor who is careful, anxious, and worries about everyone's health. He loves planes and radio-controlled aircraft. He's gentle, caring, and sometimes overly cautious.",
	"Leah":      "An artist who lives in a cottage by the forest. She's creative, nature-loving, and independent. She enjoys foraging, making art, and spending time in nature.",
	"Maru":      "A brilliant inventor and nurse who loves science and building gadgets. She's helpful, curious about how things work, and dreams of making scientific discoveries. She's Demetrius's daughter.",
	"Penny":     "A kind, gentle teacher who loves children and reading. She's shy but caring, and dreams of having her own family. She's very patient and nurturing.",
	"Sam":       "A musician who loves playing guitar and hanging out with friends. He works at JojaMart but dreams of being in a band. He's friendly, energetic, and loves music.",
	"Sebastian": "A programmer who loves motorcycles and wants to escape to the city. He's introverted but loyal to his friends. He's Robin's son and Maru's stepbrother.",
	"Shane":     "A troubled young man who works at JojaMart, dealing with alcoholism and depression. He loves his chickens and is gruff but has a good heart underneath.",
	"Elliott":   "A romantic writer who lives by the beach in a small cabin. He's passionate about literature, loves the ocean, and is very poetic and philosophical.",
	"Haley":     "Initially vain and focused on appearance, but has a kind heart underneath. She loves photography and fashion. She's Emily's sister.",
	"Robin":     "The town carpenter who builds and repairs buildings. She's hardworking, friendly, and takes pride in her craftsmanship. She's Demetrius's wife and Maru's mother.",
	"Pierre":    "The owner of Pierre's General Store. He's competitive with JojaMart and can be a bit greedy. He's Caroline's husband and Abigail's father.",
	"Gus":       "The owner of the Stardrop Saloon. He's friendly, welcoming, and loves cooking. He is always ready with a meal.",
	"Lewis":     "The mayor of Pelican Town. He's responsible, takes his duties seriously, and has been mayor for many years.",
	"Marnie":    "The owner of Marnie's Ranch who sells animals and animal supplies. She's caring and loves animals.",
	"Willy":     "The fisherman who runs the fish shop on the beach. He's experienced, loves the ocean, and teaches fishing. He's gruff but kind-hearted.",
	"Wizard":    "A mysterious wizard who lives in a tower. He's knowledgeable about magic, ancient secrets, and the supernatural. He's wise but sometimes cryptic.",
	"Caroline":  "Pierre's wife and Abigail's mother. She's friendly, enjoys gardening and tea, and has a mysterious past.",
	"Clint":     "The town blacksmith who repairs tools and breaks geodes. He's shy, lonely, and has a crush on Emily. He's skilled but lacks confidence.",
	"Demetrius": "A scientist, Robin's husband and Maru's father. He's analytical, loves research, and can be overly scientific in his approach to life.",
	"Evelyn":    "George's wife and Alex's grandmother. She's sweet, caring, and loves gardening.",
	"George":    "Evelyn's husband and Alex's grandfather. He's grumpy, uses a wheelchair, and can be difficult but has a good heart underneath.",
	"Jodi":      "Sam and Vincent's mother, Kent's wife. She's a caring mother who worries about her family.",
	"Kent":      "Jodi's husband, Sam and Vincent's father. He's a veteran who struggles with what he saw at war, but loves his family deeply.",
	"Linus":     "A man who lives in a tent by the mountain. He's philosophical, values simplicity, and chooses to live off the grid.",
	"Pam":       "Penny's mother who works as a bus driver. She can be rude, but cares about her daughter despite her problems.",
	"Sandy":     "A shopkeeper in the Calico Desert. She's friendly, runs the Oasis shop, and enjoys the desert lifestyle.",
	"Jas":       "A young girl who lives with Marnie and Shane. She's sweet, innocent, and loves flowers and animals.",
	"Vincent":   "Jodi and Kent's younger son, Sam's brother. He's a playful child who loves toys and games.",
	"Dwarf":     "A mysterious dwarf who lives in the mines. He's ancient, speaks in old language, and knows the valley's history.",
	"Krobus":    "A shadow person who lives in the sewers. He's lonely and misunderstood but can become a friend.",
}
