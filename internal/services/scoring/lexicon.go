package scoring

// Financial sentiment lexicon. Multi-word phrases are matched as
// substrings and carry double weight in the scorer.

var bullishTerms = []string{
	// strong positive
	"moon", "rocket", "surge", "breakout", "rally", "pump",
	"diamond hands", "hodl", "to the moon", "bull run",
	"lambo", "tendies",

	// moderate positive
	"buy", "long", "bull", "bullish", "strong", "positive",
	"growth", "gain", "rise", "green", "calls",
	"hold", "support", "bounce", "recovery", "uptrend",
	"momentum", "catalyst", "breakthrough",

	// financial positives
	"beat earnings", "exceed expectations", "strong revenue",
	"good news", "upgrade", "outperform", "overweight",
	"analyst upgrade", "price target increase", "dividend increase",
	"strong fundamentals", "solid quarter", "impressive results",

	// technicals
	"golden cross", "cup and handle", "ascending triangle",
	"higher highs", "bullish flag", "volume surge",
}

var bearishTerms = []string{
	// strong negative
	"crash", "dump", "panic sell", "paper hands", "rug pull",
	"dead cat bounce", "bear trap", "capitulation", "bloodbath",
	"free fall", "bag holder", "rekt",

	// moderate negative
	"sell", "short", "bear", "bearish", "weak", "negative",
	"loss", "drop", "fall", "decline", "red", "puts",
	"resistance", "breakdown", "correction", "downtrend",
	"profit taking", "selling pressure", "margin call",

	// financial negatives
	"miss earnings", "below expectations", "weak revenue",
	"bad news", "downgrade", "underperform", "underweight",
	"analyst downgrade", "price target cut", "dividend cut",
	"weak fundamentals", "disappointing quarter", "poor results",
	"guidance cut", "investigation", "lawsuit",

	// technicals
	"death cross", "head and shoulders", "descending triangle",
	"lower lows", "bearish flag", "support break",
}

var intensifierTerms = []string{
	"very", "extremely", "highly", "massive", "huge", "enormous",
	"incredible", "amazing", "terrible", "awful", "fantastic",
	"outstanding", "exceptional", "phenomenal", "disastrous",
}
