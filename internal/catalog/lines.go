package catalog

type lineTable struct {
	byCharacter map[string]string
	generic     string
}

var categoryLines = map[Category]lineTable{
	CategoryGift: {
		generic: "Thank you so much!",
		byCharacter: map[string]string{
			"Abigail":   "Oh, thank you! This is really thoughtful of you.",
			"Alex":      "Thanks! This is really cool of you.",
			"Emily":     "How wonderful! This brings such positive energy!",
			"Harvey":    "Thank you, I appreciate your thoughtfulness.",
			"Leah":      "How kind of you! This will be perfect for my art.",
			"Maru":      "Thank you! This is so thoughtful of you.",
			"Penny":     "Oh my, thank you so much! This is very kind.",
			"Sam":       "Thanks! This is really awesome of you.",
			"Sebastian": "Thanks... I appreciate it.",
			"Shane":     "Thanks... I appreciate it.",
			"Elliott":   "How generous of you! Thank you so much.",
			"Haley":     "Oh, thank you! This is so sweet of you.",
			"Robin":     "Thank you! This is very thoughtful of you.",
			"Pierre":    "Thank you, I appreciate your business!",
			"Gus":       "Thank you! This is very kind of you.",
			"Lewis":     "Thank you, I appreciate your thoughtfulness.",
			"Marnie":    "How sweet of you! Thank you so much.",
			"Willy":     "Thanks, I appreciate it.",
			"Wizard":    "Your gift is... interesting. Thank you.",
			"Caroline":  "How lovely! Thank you so much.",
			"Clint":     "Thanks... I appreciate it.",
			"Demetrius": "Thank you, this is quite thoughtful.",
			"Evelyn":    "Oh my, thank you so much!",
			"George":    "Hmph... thanks, I guess.",
			"Jodi":      "Thank you, this is very kind.",
			"Kent":      "Thanks, I appreciate it.",
			"Linus":     "Thank you, friend.",
			"Pam":       "Thanks... I appreciate it.",
			"Sandy":     "Thank you! This is so nice of you.",
			"Jas":       "Thank you! This is so pretty!",
			"Vincent":   "Thanks! This is so cool!",
			"Dwarf":     "Gift... good. Thank you.",
			"Krobus":    "Thank you... friend.",
		},
	},
	CategoryEvent: {
		generic: "That was quite something!",
		byCharacter: map[string]string{
			"Abigail":   "That was quite an experience, wasn't it?",
			"Alex":      "That was pretty intense!",
			"Emily":     "What a beautiful moment that was!",
			"Harvey":    "I hope everyone stayed safe during that.",
			"Leah":      "What a memorable moment that was.",
			"Maru":      "That was quite fascinating from a scientific perspective.",
			"Penny":     "That was such a lovely experience.",
			"Sam":       "That was pretty cool!",
			"Sebastian": "Well, that was something...",
			"Shane":     "Well, that happened...",
			"Elliott":   "What a poetic moment that was.",
			"Haley":     "That was actually pretty nice.",
			"Robin":     "That was quite an experience!",
			"Pierre":    "That was quite something, wasn't it?",
			"Gus":       "That was quite an event!",
			"Lewis":     "That was quite a memorable occasion.",
			"Marnie":    "That was quite something!",
			"Willy":     "That was quite an experience.",
			"Wizard":    "The mystical energies were quite active during that event.",
			"Caroline":  "That was quite lovely!",
			"Clint":     "That was... something.",
			"Demetrius": "That was quite fascinating from a scientific perspective.",
			"Evelyn":    "That was such a lovely experience!",
			"George":    "Hmph... that was something.",
			"Jodi":      "That was quite an experience.",
			"Kent":      "That was... intense.",
			"Linus":     "That was quite something, friend.",
			"Pam":       "That was... something.",
			"Sandy":     "That was quite an experience!",
			"Jas":       "That was so much fun!",
			"Vincent":   "That was so cool!",
			"Dwarf":     "Event... interesting.",
			"Krobus":    "That was... different.",
		},
	},
	CategoryResort: {
		generic: "What a lovely place!",
		byCharacter: map[string]string{
			"Abigail":   "This place is amazing! So much to explore!",
			"Alex":      "This place is perfect for a workout!",
			"Emily":     "The energy here is so positive and uplifting!",
			"Harvey":    "I hope everyone is being safe here.",
			"Leah":      "The natural beauty here is so inspiring.",
			"Maru":      "This place has such interesting architecture!",
			"Penny":     "This is such a peaceful place.",
			"Sam":       "This place has great vibes!",
			"Sebastian": "Nice place, I guess...",
			"Shane":     "Nice place, I guess...",
			"Elliott":   "The ocean views here are absolutely poetic.",
			"Haley":     "This place is so photogenic!",
			"Robin":     "This place has such interesting architecture!",
			"Pierre":    "This place has great business potential!",
			"Gus":       "This place has such a great atmosphere!",
			"Lewis":     "This is quite a nice place for the town.",
			"Marnie":    "This place is so peaceful!",
			"Willy":     "The ocean air here is refreshing.",
			"Wizard":    "The magical energies here are quite strong.",
			"Caroline":  "This place is so lovely!",
			"Clint":     "This place is... nice.",
			"Demetrius": "This place has interesting geological features.",
			"Evelyn":    "This place is so beautiful!",
			"George":    "Hmph... it's okay.",
			"Jodi":      "This place is quite nice.",
			"Kent":      "This place is... peaceful.",
			"Linus":     "This place has good energy, friend.",
			"Pam":       "This place is... nice.",
			"Sandy":     "This place reminds me of the desert!",
			"Jas":       "This place is so pretty!",
			"Vincent":   "This place is so cool!",
			"Dwarf":     "Place... good.",
			"Krobus":    "This place is... different.",
		},
	},
}

// Day-default lines; %s is the day label.
const genericDayLine = "Hello! It's %s and I'm doing well."

var dayLines = map[string]string{
	"Abigail":   "Hey there! It's %s - perfect day for an adventure!",
	"Alex":      "Hey! It's %s - great day for a workout!",
	"Emily":     "Good %s! The energy today is so positive!",
	"Harvey":    "Good %s! I hope everyone is staying healthy.",
	"Leah":      "Good %s! I'm working on some new art inspired by nature.",
	"Maru":      "Good %s! I'm working on an exciting new invention!",
	"Penny":     "Good %s! I'm spending time with the children today.",
	"Sam":       "Hey! It's %s - perfect day for some music!",
	"Sebastian": "It's %s... another day in this small town.",
	"Shane":     "*sigh* Another %s... at least my chickens are happy.",
	"Elliott":   "Good %s! The muses are calling today.",
	"Haley":     "Hey! It's %s - perfect day for some photos!",
	"Robin":     "Good %s! I'm working on some new building projects!",
	"Pierre":    "Good %s! Business is looking good today!",
	"Gus":       "Good %s! The saloon is ready for customers!",
	"Lewis":     "Good %s! I'm taking care of town business.",
	"Marnie":    "Good %s! I'm taking care of the animals.",
	"Willy":     "Good %s! The fish are biting well today!",
	"Wizard":    "Good %s! The mystical energies are strong today.",
	"Caroline":  "Good %s! I'm tending to my garden today.",
	"Clint":     "It's %s... another day at the forge.",
	"Demetrius": "Good %s! I'm conducting some research.",
	"Evelyn":    "Good %s! I'm tending to my flowers.",
	"George":    "Hmph... it's %s.",
	"Jodi":      "Good %s! I'm taking care of the house.",
	"Kent":      "It's %s... another day.",
	"Linus":     "Good %s, friend! The mountain air is fresh today.",
	"Pam":       "It's %s... another day driving the bus.",
	"Sandy":     "Good %s! The desert is beautiful today!",
	"Jas":       "Hi! It's %s - I'm playing with my flowers!",
	"Vincent":   "Hey! It's %s - I'm playing with my toys!",
	"Dwarf":     "Day... %s.",
	"Krobus":    "Day... %s... different.",
}
