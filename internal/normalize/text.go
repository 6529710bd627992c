package normalize

import (
	"strconv"
	"strings"

	"sku-service/internal/rules"
	"sku-service/internal/utils"
)

// Normalizer is the deterministic description pipeline built from the rule
// tables. It is stateless apart from the immutable rule set and safe for
// concurrent use.
type Normalizer struct {
	rules *rules.Set
}

func New(rs *rules.Set) *Normalizer {
	return &Normalizer{rules: rs}
}

// part-noun stems around which "de"/"d" is a preposition, not an abbreviation
var prepositionContexts = map[string]struct{}{
	"absorbedor": {}, "amortiguador": {}, "soporte": {}, "base": {}, "tapa": {},
	"cubierta": {}, "protector": {}, "guardapolvo": {}, "sello": {}, "junta": {},
	"empaque": {}, "filtro": {}, "bomba": {}, "motor": {}, "sensor": {},
	"valvula": {}, "tubo": {}, "manguera": {}, "impactos": {}, "choque": {},
	"golpe": {}, "suspension": {}, "direccion": {},
}

// adjective stems whose ending follows the gender of the governing noun
var adjectiveForms = map[string][2]string{
	"izquierd": {"izquierdo", "izquierda"},
	"derech":   {"derecho", "derecha"},
	"delanter": {"delantero", "delantera"},
	"traser":   {"trasero", "trasera"},
}

// Text runs the full pipeline. Total: empty in, empty out; never fails.
//
// Stages, in order: fold case and accents, phrase abbreviations, token
// abbreviations with the preposition exception, adjective-gender agreement,
// whitespace cleanup. Synonym groups are deliberately NOT applied here; they
// exist only for match-time comparison, and folding them into the canonical
// form would permanently collapse differently-intentioned descriptions.
// No plural-to-singular reduction anywhere.
func (n *Normalizer) Text(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	t := utils.StripAccents(strings.ToLower(text))

	for _, src := range n.rules.PhraseOrder {
		t = replaceWordBounded(t, src, n.rules.PhraseAbbreviations[src])
	}

	toks := n.expandAbbreviations(t)
	toks = n.agreeAdjectives(toks)

	return utils.CollapseSpaces(strings.Join(toks, " "))
}

// UserCorrect applies the verbatim phrase corrections. Highest priority,
// case-sensitive, exact-text only; runs before the pipeline proper.
func (n *Normalizer) UserCorrect(text string) string {
	if corrected, ok := n.rules.UserCorrections[text]; ok {
		return corrected
	}
	return text
}

// ExpandSynonyms maps every term belonging to a synonym group onto the group
// representative. Match-time helper only; never part of canonicalization.
func (n *Normalizer) ExpandSynonyms(text string) string {
	if text == "" {
		return ""
	}
	words := strings.Fields(text)
	out := make([]string, len(words))
	for i, w := range words {
		if id, ok := n.rules.SynonymGroups[strings.ToLower(w)]; ok {
			out[i] = groupToken(id)
		} else {
			out[i] = w
		}
	}
	return strings.Join(out, " ")
}

func groupToken(id int) string {
	return "GROUP_" + strconv.Itoa(id)
}

// expandAbbreviations splits on whitespace and the "."/"/" separators and
// expands each token through the abbreviation table. "de"/"d" is left alone
// when it reads as a preposition, so a generic "d -> derecho" rule cannot
// corrupt phrases like "absorbedor de impactos".
func (n *Normalizer) expandAbbreviations(t string) []string {
	words := strings.FieldsFunc(t, func(r rune) bool {
		return r == '.' || r == '/' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	out := make([]string, 0, len(words))
	for i, word := range words {
		clean := utils.FoldKey(strings.Trim(word, ".,;:!?"))

		expand := true
		if clean == "de" || clean == "d" {
			prev, next := "", ""
			if i > 0 {
				prev = strings.ToLower(words[i-1])
			}
			if i < len(words)-1 {
				next = strings.ToLower(words[i+1])
			}
			_, prevCtx := prepositionContexts[prev]
			_, nextCtx := prepositionContexts[next]
			if prevCtx || nextCtx || strings.HasPrefix(next, "impact") {
				expand = false
			}
		}

		if expand {
			if full, ok := n.rules.Abbreviations[clean]; ok {
				out = append(out, full)
				continue
			}
		}
		out = append(out, word)
	}
	return out
}

// agreeAdjectives rewrites the four direction/location adjectives to match the
// gender of the nearest governed noun: up to 5 tokens to the right first, then
// up to 5 to the left. Adjectives with no governing noun in the window are
// left unchanged. Explicit index arithmetic keeps the bounds testable.
func (n *Normalizer) agreeAdjectives(toks []string) []string {
	if len(toks) == 0 {
		return toks
	}
	base := make([]string, len(toks))
	for i, t := range toks {
		base[i] = utils.FoldKey(t)
	}

	out := toks
	for i, bt := range base {
		var forms [2]string
		matched := false
		for stem, f := range adjectiveForms {
			if strings.HasPrefix(bt, stem) {
				forms, matched = f, true
				break
			}
		}
		if !matched {
			continue
		}

		gender, found := n.nounGenderNear(base, i)
		if !found {
			continue
		}
		if gender == rules.Masculine {
			out[i] = forms[0]
		} else {
			out[i] = forms[1]
		}
	}
	return out
}

func (n *Normalizer) nounGenderNear(base []string, i int) (rules.Gender, bool) {
	limit := len(base)
	for j := i + 1; j < i+6 && j < limit; j++ {
		if g, ok := n.rules.NounGender[base[j]]; ok {
			return g, true
		}
	}
	for j := i - 1; j > i-6 && j >= 0; j-- {
		if g, ok := n.rules.NounGender[base[j]]; ok {
			return g, true
		}
	}
	return 0, false
}

// replaceWordBounded replaces every occurrence of from that is not flanked by
// [a-z0-9]. Works on the running string, so earlier phrase rules feed later
// ones in table order; overlapping rules are a configuration error, caught at
// load time.
func replaceWordBounded(s, from, to string) string {
	if from == "" {
		return s
	}
	var b strings.Builder
	for {
		idx := strings.Index(s, from)
		if idx < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := idx + len(from)
		leftOK := idx == 0 || !isWordByte(s[idx-1])
		rightOK := end == len(s) || !isWordByte(s[end])
		if leftOK && rightOK {
			b.WriteString(s[:idx])
			b.WriteString(to)
		} else {
			b.WriteString(s[:end])
		}
		s = s[end:]
	}
}

func isWordByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
