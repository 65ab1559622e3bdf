package game_constants

// WordPair is one Spy round's secret: civilians share Civilian, the spy gets Spy.
type WordPair struct {
	Civilian string
	Spy      string
}

var SpyWordPairs = []WordPair{
	{Civilian: "Pizza", Spy: "Burger"},
	{Civilian: "Beach", Spy: "Mountain"},
	{Civilian: "Library", Spy: "Museum"},
	{Civilian: "Guitar", Spy: "Piano"},
	{Civilian: "Coffee", Spy: "Tea"},
	{Civilian: "Dance", Spy: "Sing"},
	{Civilian: "Ocean", Spy: "Lake"},
	{Civilian: "Book", Spy: "Movie"},
	{Civilian: "Sunset", Spy: "Sunrise"},
	{Civilian: "Music", Spy: "Art"},
	{Civilian: "Forest", Spy: "Desert"},
	{Civilian: "Camera", Spy: "Phone"},
	{Civilian: "Adventure", Spy: "Journey"},
	{Civilian: "Friends", Spy: "Family"},
	{Civilian: "Dream", Spy: "Goal"},
}

var skribbleEasyWords = []string{
	"cat", "dog", "house", "car", "tree", "sun", "moon", "star", "bird", "fish",
	"apple", "banana", "book", "pencil", "chair", "table", "bed", "door", "window", "phone",
	"cake", "ice cream", "pizza", "hamburger", "sandwich", "cereal", "milk", "water", "coffee", "tea",
	"hat", "shoes", "shirt", "pants", "jacket", "glasses", "watch", "bag", "umbrella", "keys",
	"ball", "toy", "bike", "bicycle", "truck", "bus", "train", "plane", "boat", "ship",
	"guitar", "piano", "drum", "violin", "trumpet", "flute", "microphone", "radio", "television", "camera",
	"flower", "garden", "beach", "mountain", "ocean", "river", "lake", "forest", "desert", "island",
	"doctor", "teacher", "police", "firefighter", "chef", "farmer", "artist", "musician", "athlete", "scientist",
	"elephant", "lion", "tiger", "bear", "rabbit", "mouse", "horse", "cow", "pig", "sheep",
	"butterfly", "bee", "spider", "ant", "ladybug", "dragonfly", "grasshopper", "cricket", "beetle", "worm",
}

var skribbleMediumWords = []string{
	"adventure", "journey", "vacation", "celebration", "party", "wedding", "birthday", "holiday", "festival", "parade",
	"library", "museum", "school", "hospital", "restaurant", "hotel", "airport", "station", "park", "zoo",
	"computer", "laptop", "keyboard", "joystick", "screen", "internet", "website", "email", "message", "download",
	"basketball", "football", "soccer", "tennis", "baseball", "volleyball", "swimming", "running", "cycling", "dancing",
	"caterpillar", "dragon", "unicorn", "mermaid", "robot", "alien", "monster", "ghost", "witch", "wizard",
	"superhero", "princess", "knight", "pirate", "ninja", "samurai", "cowboy", "detective", "explorer", "astronaut",
	"glacier", "volcano", "waterfall", "cave", "bridge", "tunnel", "tower", "castle", "palace", "temple",
	"sunset", "sunrise", "rainbow", "storm", "thunder", "lightning", "rain", "snow", "cloud", "wind",
	"chocolate", "candy", "cookie", "bread", "butter", "cheese", "egg", "meat", "chicken", "rice",
	"backpack", "suitcase", "wallet", "purse", "bracelet", "necklace", "ring", "earring", "belt", "tie",
}

var skribbleHardWords = []string{
	"philosophy", "mathematics", "architecture", "engineering", "psychology", "biology", "chemistry", "physics", "geography", "history",
	"transformation", "revolution", "evolution", "discovery", "invention", "innovation", "creation", "destruction", "construction", "demolition",
	"telescope", "microscope", "laboratory", "experiment", "hypothesis", "theory", "research", "study", "analysis", "investigation",
	"gymnastics", "archaeology", "paleontology", "geology", "meteorology", "astronomy", "navigation", "exploration", "expedition", "mission",
	"orchestra", "symphony", "opera", "ballet", "theater", "performance", "exhibition", "gallery", "sculpture", "painting",
	"technology", "automation", "artificial", "intelligence", "virtual", "reality", "simulation", "animation", "digital", "electronic",
	"photography", "cinematography", "documentary", "interview", "journalism", "reporting", "broadcasting", "streaming", "podcast", "vlog",
	"entrepreneur", "business", "corporation", "industry", "commerce", "trade", "economy", "market", "investment", "finance",
	"pharmaceutical", "medicine", "treatment", "therapy", "surgery", "diagnosis", "symptom", "disease", "recovery", "health",
	"environment", "ecosystem", "biodiversity", "conservation", "preservation", "pollution", "recycling", "sustainability", "renewable", "energy",
}

// SkribbleWords returns the word list for a difficulty, falling back to the easy list.
func SkribbleWords(difficulty string) []string {
	switch difficulty {
	case DifficultyMedium:
		return skribbleMediumWords
	case DifficultyHard:
		return skribbleHardWords
	default:
		return skribbleEasyWords
	}
}

func IsDifficulty(difficulty string) bool {
	return difficulty == DifficultyEasy || difficulty == DifficultyMedium || difficulty == DifficultyHard
}
