package jsunpack

import (
	"fmt"
	"strings"
)

const packerFunc = `eval(function(p,a,c,k,e,d){e=function(c){return(c<a?'':e(parseInt(c/a)))+((c=c%a)>35?String.fromCharCode(c+29):c.toString(36))};` +
	`if(!''.replace(/^/,String)){while(c--)d[e(c)]=k[c]||e(c);k=[function(e){return d[e]}];e=function(){return'\\w+'};c=1};` +
	`while(c--)if(k[c])p=p.replace(new RegExp('\\b'+e(c)+'\\b','g'),k[c]);return p}`

// Pack is the inverse of Unpack. Words are numbered in order of first
// appearance; a word that already equals its own token gets an empty entry.
func Pack(body string, radix int) string {
	if radix < 2 || radix > len(alphabet) {
		radix = 62
	}

	index := map[string]int{}
	var words []string
	for _, w := range reWord.FindAllString(body, -1) {
		if _, ok := index[w]; ok {
			continue
		}
		index[w] = len(words)
		words = append(words, w)
	}

	packed := reWord.ReplaceAllStringFunc(body, func(w string) string {
		return Encode(index[w], radix)
	})

	dict := make([]string, len(words))
	for i, w := range words {
		if Encode(i, radix) != w {
			dict[i] = w
		}
	}

	return fmt.Sprintf("%s('%s',%d,%d,'%s'.split('|'),0,{}))",
		packerFunc, quote(packed), radix, len(words), quote(strings.Join(dict, "|")))
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return r.Replace(s)
}
