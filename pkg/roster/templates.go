package roster

import "fabler/pkg/schema"

// builtinTemplates is the shipped character pool. It covers the common
// supporting-role archetypes a skeleton asks for, with enough visual
// detail to lock each one down in prompts.
func builtinTemplates() []schema.CharacterTemplate {
	return []schema.CharacterTemplate{
		{
			ID:        "tmpl-orla-owl",
			Name:      "Orla",
			Role:      "guide",
			Archetype: "wise mentor",
			Nature:    []string{"patient", "gentle", "knowing"},
			Visual:    "a small owl with speckled gray feathers, round amber eyes, and a crooked left wing",
			Palette:   []string{"gray feathers", "amber eyes"},
		},
		{
			ID:        "tmpl-bram-badger",
			Name:      "Bram",
			Role:      "guardian",
			Archetype: "gruff protector",
			Nature:    []string{"loyal", "stubborn", "brave"},
			Visual:    "a stocky badger with black and white striped fur, a scar over one eye, and a worn leather satchel",
			Palette:   []string{"black and white fur", "brown satchel"},
		},
		{
			ID:        "tmpl-fig-fox",
			Name:      "Fig",
			Role:      "trickster",
			Archetype: "playful trickster",
			Nature:    []string{"clever", "mischievous", "quick"},
			Visual:    "a slender fox with rust-red fur, a white-tipped tail, and bright green eyes",
			Palette:   []string{"rust-red fur", "green eyes"},
		},
		{
			ID:        "tmpl-wren-girl",
			Name:      "Wren",
			Role:      "friend",
			Archetype: "loyal friend",
			Nature:    []string{"cheerful", "curious", "kind"},
			Visual:    "a girl with short black hair, dark brown eyes, warm brown skin, and a yellow raincoat",
			Palette:   []string{"yellow raincoat", "black hair"},
		},
		{
			ID:        "tmpl-pemberly",
			Name:      "Professor Pemberly",
			Role:      "sage",
			Archetype: "eccentric inventor",
			Nature:    []string{"absent-minded", "brilliant", "warm"},
			Visual:    "an old man with wild white hair, round spectacles, pale skin, and an ink-stained green waistcoat",
			Palette:   []string{"green waistcoat", "white hair"},
		},
		{
			ID:        "tmpl-sable-cat",
			Name:      "Sable",
			Role:      "rival",
			Archetype: "proud rival",
			Nature:    []string{"vain", "competitive", "secretly kind"},
			Visual:    "a sleek black cat with golden eyes and a silver bell on a ribbon collar",
			Palette:   []string{"black fur", "golden eyes"},
		},
		{
			ID:        "tmpl-grindle",
			Name:      "Grindle",
			Role:      "antagonist",
			Archetype: "grumpy troublemaker",
			Nature:    []string{"grouchy", "scheming", "lonely"},
			Visual:    "a squat old man with a tangled gray beard, bushy eyebrows, and a patched purple coat",
			Palette:   []string{"purple coat", "gray beard"},
		},
		{
			ID:        "tmpl-juniper",
			Name:      "Juniper",
			Role:      "helper",
			Archetype: "kind helper",
			Nature:    []string{"generous", "shy", "observant"},
			Visual:    "a young woman with long red hair in a braid, freckled fair skin, hazel eyes, and a flour-dusted blue apron",
			Palette:   []string{"blue apron", "red hair"},
		},
		{
			ID:        "tmpl-moss-dog",
			Name:      "Moss",
			Role:      "companion",
			Archetype: "faithful companion",
			Nature:    []string{"devoted", "excitable", "fearless"},
			Visual:    "a shaggy sheepdog with gray and white fur, one blue eye and one brown eye",
			Palette:   []string{"gray and white fur"},
		},
		{
			ID:        "tmpl-elder-ash",
			Name:      "Elder Ash",
			Role:      "elder",
			Archetype: "village elder",
			Nature:    []string{"calm", "fair", "storyteller"},
			Visual:    "an old woman with silver hair in a bun, deep brown skin, kind dark eyes, and a woven shawl of autumn colors",
			Palette:   []string{"autumn shawl", "silver hair"},
		},
		{
			ID:        "tmpl-pippin",
			Name:      "Pippin",
			Role:      "jester",
			Archetype: "comic relief",
			Nature:    []string{"silly", "loud", "good-hearted"},
			Visual:    "a round boy with curly brown hair, rosy cheeks, light skin, and a too-big striped scarf",
			Palette:   []string{"striped scarf", "brown hair"},
		},
		{
			ID:        "tmpl-nix-raven",
			Name:      "Nix",
			Role:      "messenger",
			Archetype: "mysterious messenger",
			Nature:    []string{"aloof", "watchful", "honest"},
			Visual:    "a large raven with glossy black feathers, one pale gray eye, and a tiny brass capsule on one leg",
			Palette:   []string{"black feathers", "brass capsule"},
		},
	}
}
