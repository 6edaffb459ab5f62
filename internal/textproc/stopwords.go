package textproc

import "strings"

type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	set := make(wordSet, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func (s wordSet) has(word string) bool {
	_, ok := s[word]
	return ok
}

// stopwordTables is keyed by language code. It is filled at package init and
// only read afterwards
var stopwordTables = map[string]wordSet{
	"pt": newWordSet(portugueseStopwords...),
	"en": newWordSet(englishStopwords...),
}

// hasStopwords reports whether a stopword table exists for lang
func hasStopwords(lang string) bool {
	_, ok := stopwordTables[strings.ToLower(lang)]
	return ok
}

// removeStopwords splits on single spaces and drops whole-token matches
func removeStopwords(text, lang string) string {
	set, ok := stopwordTables[lang]
	if !ok {
		return text
	}

	parts := strings.Split(text, " ")
	kept := parts[:0]
	for _, p := range parts {
		if set.has(p) {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, " ")
}

var portugueseStopwords = []string{
	// articles
	"o", "a", "os", "as", "um", "uma", "uns", "umas",

	// prepositions and contractions
	"de", "do", "da", "dos", "das", "dum", "duma",
	"em", "no", "na", "nos", "nas", "num", "numa",
	"ao", "aos", "à", "às",
	"por", "pelo", "pela", "pelos", "pelas",
	"para", "pra", "com", "sem", "até", "após", "ante", "entre", "desde", "contra", "perante",

	// conjunctions
	"e", "ou", "mas", "nem", "que", "se", "porque", "pois", "como", "quando", "porém", "contudo", "também",

	// pronouns
	"eu", "tu", "ele", "ela", "nós", "vós", "eles", "elas", "você", "vocês",
	"me", "te", "lhe", "lhes", "vos", "mim", "ti", "si", "comigo", "contigo", "conosco",
	"meu", "minha", "meus", "minhas", "teu", "tua", "teus", "tuas",
	"seu", "sua", "seus", "suas", "nosso", "nossa", "nossos", "nossas",
	"este", "esta", "estes", "estas", "esse", "essa", "esses", "essas",
	"aquele", "aquela", "aqueles", "aquelas", "isto", "isso", "aquilo",
	"qual", "quais", "quem", "cujo", "cuja", "cujos", "cujas",

	// ser
	"ser", "sou", "és", "é", "somos", "sois", "são",
	"era", "eras", "éramos", "éreis", "eram",
	"fui", "foste", "foi", "fomos", "fostes", "foram",
	"fora", "foras", "fôramos", "fôreis",
	"serei", "serás", "será", "seremos", "sereis", "serão",
	"seria", "serias", "seríamos", "seríeis", "seriam",
	"seja", "sejas", "sejamos", "sejais", "sejam",
	"fosse", "fosses", "fôssemos", "fôsseis", "fossem",
	"for", "fores", "formos", "fordes", "forem",
	"sendo", "sido",

	// estar
	"estar", "estou", "estás", "está", "estamos", "estais", "estão",
	"estava", "estavas", "estávamos", "estáveis", "estavam",
	"estive", "estiveste", "esteve", "estivemos", "estivestes", "estiveram",
	"estivera", "estiveras", "estivéramos", "estivéreis",
	"estarei", "estarás", "estará", "estaremos", "estareis", "estarão",
	"estaria", "estarias", "estaríamos", "estaríeis", "estariam",
	"esteja", "estejas", "estejamos", "estejais", "estejam",
	"estivesse", "estivesses", "estivéssemos", "estivésseis", "estivessem",
	"estiver", "estiveres", "estivermos", "estiverdes", "estiverem",
	"estando",

	// ter
	"ter", "tenho", "tens", "tem", "temos", "tendes", "têm",
	"tinha", "tinhas", "tínhamos", "tínheis", "tinham",
	"tive", "tiveste", "teve", "tivemos", "tivestes", "tiveram",
	"tivera", "tiveras", "tivéramos", "tivéreis",
	"terei", "terás", "terá", "teremos", "tereis", "terão",
	"teria", "terias", "teríamos", "teríeis", "teriam",
	"tenha", "tenhas", "tenhamos", "tenhais", "tenham",
	"tivesse", "tivesses", "tivéssemos", "tivésseis", "tivessem",
	"tiver", "tiveres", "tivermos", "tiverdes", "tiverem",
	"tendo", "tido",

	// haver
	"haver", "hei", "hás", "há", "havemos", "hemos", "haveis", "hão",
	"havia", "havias", "havíamos", "havíeis", "haviam",
	"houve", "houveste", "houvemos", "houvestes", "houveram",
	"houvera", "houveras", "houvéramos", "houvéreis",
	"haverei", "haverás", "haverá", "haveremos", "havereis", "haverão",
	"haveria", "haverias", "haveríamos", "haveríeis", "haveriam",
	"haja", "hajas", "hajamos", "hajais", "hajam",
	"houvesse", "houvesses", "houvéssemos", "houvésseis", "houvessem",
	"houver", "houveres", "houvermos", "houverdes", "houverem",
	"havendo", "havido",
}

var englishStopwords = []string{
	"a", "an", "the",
	"of", "in", "on", "at", "to", "for", "from", "by", "with", "without", "into", "onto", "about", "as",
	"and", "or", "but", "nor", "so", "if", "than", "that", "because", "while",
	"i", "you", "he", "she", "it", "we", "they", "me", "him", "her", "us", "them",
	"my", "your", "his", "its", "our", "their", "mine", "yours", "ours", "theirs",
	"this", "these", "those", "which", "who", "whom", "whose", "what",
	"be", "am", "is", "are", "was", "were", "been", "being",
	"have", "has", "had", "having",
	"do", "does", "did", "doing",
	"there",
}
