package canon

// Default tables used when a visual profile is sparse. These are plain
// immutable configuration data; nothing in this package mutates them.

// heightByAge maps a child's age in years to an average height in cm.
// Ages outside the table clamp to its ends.
var heightByAge = map[int]int{
	3:  95,
	4:  102,
	5:  109,
	6:  115,
	7:  121,
	8:  128,
	9:  133,
	10: 138,
	11: 144,
	12: 150,
}

const (
	minTableAge = 3
	maxTableAge = 12
)

// heightForAge looks up the average height for an age, clamping to the
// table's range.
func heightForAge(age int) int {
	if age < minTableAge {
		age = minTableAge
	}
	if age > maxTableAge {
		age = maxTableAge
	}
	return heightByAge[age]
}

type colorContrast struct {
	color     string
	contrasts []string
}

// hairContrast lists hair colors that must be forbidden once a given
// color is locked. Colors are matched as substrings of the locked value
// in declaration order; the first hit wins, so compound descriptors like
// "grayish brown" resolve deterministically.
var hairContrast = []colorContrast{
	{"blonde", []string{"brown hair", "black hair", "red hair"}},
	{"blond", []string{"brown hair", "black hair", "red hair"}},
	{"ginger", []string{"blonde hair", "brown hair", "black hair"}},
	{"brown", []string{"blonde hair", "black hair", "red hair"}},
	{"black", []string{"blonde hair", "brown hair", "red hair"}},
	{"red", []string{"blonde hair", "brown hair", "black hair"}},
	{"white", []string{"brown hair", "black hair", "blonde hair"}},
	{"gray", []string{"brown hair", "black hair", "blonde hair"}},
	{"blue", []string{"brown hair", "blonde hair", "black hair"}},
	{"pink", []string{"brown hair", "blonde hair", "black hair"}},
	{"green", []string{"brown hair", "blonde hair", "black hair"}},
}

// eyeContrast is the same idea for locked eye colors.
var eyeContrast = []colorContrast{
	{"hazel", []string{"blue eyes", "gray eyes"}},
	{"amber", []string{"blue eyes", "green eyes"}},
	{"blue", []string{"brown eyes", "green eyes", "black eyes"}},
	{"green", []string{"brown eyes", "blue eyes", "black eyes"}},
	{"brown", []string{"blue eyes", "green eyes", "gray eyes"}},
	{"gray", []string{"brown eyes", "green eyes"}},
	{"black", []string{"blue eyes", "green eyes"}},
}

// animalAnatomy is the baseline forbidden list for human characters.
var animalAnatomy = []string{
	"animal ears",
	"tail",
	"fur",
	"muzzle",
	"paws",
	"whiskers",
	"snout",
	"claws",
}

// anthropomorphic is the baseline forbidden list for animal characters.
var anthropomorphic = []string{
	"standing upright",
	"bipedal posture",
	"human hands",
	"human clothing",
	"wearing pants",
	"wearing shoes",
}

// speciesKeywords drives fuzzy species classification when no explicit
// species field is present. Checked in declaration order; first hit wins.
var speciesKeywords = []struct {
	species  Species
	keywords []string
}{
	{SpeciesCat, []string{"cat", "kitten", "feline", "tabby"}},
	{SpeciesDog, []string{"dog", "puppy", "canine", "pup"}},
	{SpeciesAnimal, []string{
		"fox", "rabbit", "bunny", "bear", "wolf", "dragon", "bird", "owl",
		"mouse", "squirrel", "deer", "horse", "pony", "hedgehog", "otter",
	}},
	{SpeciesHuman, []string{"human", "boy", "girl", "child", "kid"}},
}
