package textmine

var englishStopwords = setOf(
	"a", "about", "above", "after", "again", "all", "also", "am", "an", "and",
	"any", "are", "as", "at", "be", "because", "been", "before", "being",
	"below", "between", "both", "but", "by", "can", "could", "did", "do",
	"does", "doing", "don", "down", "during", "each", "few", "for", "from",
	"further", "had", "has", "have", "having", "he", "her", "here", "hers",
	"him", "his", "how", "if", "in", "into", "is", "it", "its", "itself",
	"just", "let", "lets", "me", "more", "most", "my", "myself", "no", "nor",
	"not", "now", "of", "off", "on", "once", "only", "or", "other", "our",
	"ours", "out", "over", "own", "please", "same", "she", "should", "so",
	"some", "such", "than", "that", "the", "their", "theirs", "them", "then",
	"there", "these", "they", "this", "those", "through", "to", "too",
	"under", "until", "up", "us", "very", "was", "we", "were", "what",
	"when", "where", "which", "while", "who", "whom", "why", "will", "with",
	"would", "you", "your", "yours", "yourself", "i", "ok", "okay", "yes",
	"thanks", "hi", "hey", "hello", "make", "sure", "want", "need", "like",
	"get", "got", "use", "using", "one", "two", "way", "thing", "things",
)

var chineseStopwords = setOf(
	"的", "了", "是", "我", "你", "他", "她", "它", "们", "我们", "你们",
	"这", "那", "这个", "那个", "这些", "那些", "一下", "一个", "请", "帮",
	"帮我", "吗", "呢", "吧", "啊", "呀", "和", "与", "及", "或", "在",
	"把", "被", "让", "给", "就", "都", "也", "还", "要", "会", "能", "可以",
	"需要", "然后", "现在", "已经", "一些", "什么", "怎么", "为什么", "如何",
	"没有", "不", "有", "对", "好", "好的", "就是", "还是", "看看", "一",
)

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// IsStopword reports whether tok is an English or Chinese stopword.
func IsStopword(tok string) bool {
	return englishStopwords[tok] || chineseStopwords[tok]
}
