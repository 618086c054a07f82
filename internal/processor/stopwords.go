package processor

var englishStopwords = toSet(
	"a", "about", "above", "after", "again", "against", "all", "almost", "also", "although",
	"always", "am", "among", "an", "and", "another", "any", "are", "around", "as", "at",
	"be", "became", "because", "been", "before", "being", "below", "between", "both", "but",
	"by", "can", "cannot", "could", "did", "do", "does", "doing", "done", "down", "due",
	"during", "each", "either", "else", "enough", "etc", "even", "ever", "every", "few",
	"for", "from", "further", "had", "has", "have", "having", "he", "her", "here", "hers",
	"herself", "him", "himself", "his", "how", "however", "i", "if", "in", "into", "is",
	"it", "its", "itself", "just", "least", "less", "many", "may", "me", "might", "more",
	"most", "much", "must", "my", "myself", "neither", "no", "nor", "not", "now", "of",
	"off", "often", "on", "once", "one", "only", "or", "other", "others", "otherwise",
	"our", "ours", "ourselves", "out", "over", "own", "per", "perhaps", "quite", "rather",
	"same", "several", "shall", "she", "should", "since", "so", "some", "still", "such",
	"than", "that", "the", "their", "theirs", "them", "themselves", "then", "there",
	"therefore", "these", "they", "this", "those", "though", "through", "thus", "to", "too",
	"under", "until", "up", "upon", "us", "very", "via", "was", "we", "well", "were",
	"what", "whatever", "when", "where", "whereas", "whether", "which", "while", "who",
	"whom", "whose", "why", "will", "with", "within", "without", "would", "yet", "you",
	"your", "yours", "yourself", "yourselves",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func isStopword(word string) bool {
	_, ok := englishStopwords[word]
	return ok
}
