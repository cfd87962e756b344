package embedding

// #region stopwords
// stopwords is the English stop list removed before weighting. It extends
// the short topic-matching list with the common function words of the
// standard English list used by TF-IDF tools.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "do": true, "does": true, "did": true,
	"have": true, "has": true, "had": true, "be": true, "been": true,
	"being": true, "will": true, "would": true, "could": true, "should": true,
	"may": true, "might": true, "can": true, "shall": true, "not": true,
	"no": true, "and": true, "or": true, "but": true, "if": true,
	"then": true, "than": true, "so": true, "as": true, "at": true,
	"by": true, "for": true, "from": true, "in": true, "into": true,
	"of": true, "on": true, "to": true, "with": true, "about": true,
	"up": true, "out": true, "it": true, "its": true, "this": true,
	"that": true, "what": true, "which": true, "who": true, "how": true,
	"when": true, "where": true, "why": true, "you": true, "me": true,
	"i": true, "my": true, "your": true, "we": true, "they": true,
	"he": true, "she": true, "her": true, "him": true, "us": true,
	"them": true, "these": true, "those": true, "there": true, "here": true,
	"all": true, "any": true, "both": true, "each": true, "few": true,
	"more": true, "most": true, "other": true, "some": true, "such": true,
	"only": true, "own": true, "same": true, "too": true, "very": true,
	"also": true, "am": true, "our": true, "ours": true, "their": true,
	"theirs": true, "his": true, "hers": true, "itself": true, "yourself": true,
	"himself": true, "herself": true, "themselves": true, "ourselves": true, "whom": true,
	"whose": true, "after": true, "before": true, "above": true, "below": true,
	"between": true, "through": true, "during": true, "over": true, "under": true,
	"again": true, "further": true, "once": true, "off": true, "down": true,
	"because": true, "while": true, "until": true, "against": true, "among": true,
	"nor": true, "whether": true, "either": true, "neither": true, "every": true,
	"must": true, "cannot": true, "get": true, "give": true, "go": true,
	"however": true, "therefore": true, "thus": true, "hence": true, "yet": true,
	"already": true, "always": true, "never": true, "often": true, "sometimes": true,
	"just": true, "now": true, "well": true, "even": true, "still": true,
	"much": true, "many": true, "less": true, "least": true, "etc": true,
	"upon": true, "within": true, "without": true, "across": true, "along": true,
	"around": true, "toward": true, "towards": true, "via": true, "per": true,
	"one": true, "two": true, "three": true, "first": true, "last": true,
	"becomes": true, "become": true, "made": true, "make": true, "see": true,
	"tell": true,
}

// #endregion stopwords
