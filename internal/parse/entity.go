package parse

// htmlEntity maps the named HTML entity references the parser resolves to
// their replacement text. CommonMark requires the full HTML5 entity list;
// this table carries the named entities that occur in practice, and numeric
// references (&#…; and &#x…;) are handled separately and cover the rest of
// the plane.
var htmlEntity = map[string]string{
	"&AElig;":   "Æ",
	"&AMP;":     "&",
	"&Aacute;":  "Á",
	"&Acirc;":   "Â",
	"&Agrave;":  "À",
	"&Aring;":   "Å",
	"&Atilde;":  "Ã",
	"&Auml;":    "Ä",
	"&COPY;":    "©",
	"&Ccedil;":  "Ç",
	"&Dagger;":  "‡",
	"&Delta;":   "Δ",
	"&ETH;":     "Ð",
	"&Eacute;":  "É",
	"&Ecirc;":   "Ê",
	"&Egrave;":  "È",
	"&Euml;":    "Ë",
	"&GT;":      ">",
	"&Gamma;":   "Γ",
	"&Iacute;":  "Í",
	"&Icirc;":   "Î",
	"&Igrave;":  "Ì",
	"&Iuml;":    "Ï",
	"&LT;":      "<",
	"&Lambda;":  "Λ",
	"&Ntilde;":  "Ñ",
	"&Oacute;":  "Ó",
	"&Ocirc;":   "Ô",
	"&Ograve;":  "Ò",
	"&Omega;":   "Ω",
	"&Oslash;":  "Ø",
	"&Otilde;":  "Õ",
	"&Ouml;":    "Ö",
	"&Phi;":     "Φ",
	"&Pi;":      "Π",
	"&Prime;":   "″",
	"&Psi;":     "Ψ",
	"&QUOT;":    "\"",
	"&REG;":     "®",
	"&Sigma;":   "Σ",
	"&THORN;":   "Þ",
	"&Theta;":   "Θ",
	"&Uacute;":  "Ú",
	"&Ucirc;":   "Û",
	"&Ugrave;":  "Ù",
	"&Uuml;":    "Ü",
	"&Xi;":      "Ξ",
	"&Yacute;":  "Ý",
	"&aacute;":  "á",
	"&acirc;":   "â",
	"&acute;":   "´",
	"&aelig;":   "æ",
	"&agrave;":  "à",
	"&alpha;":   "α",
	"&amp;":     "&",
	"&aring;":   "å",
	"&ast;":     "*",
	"&atilde;":  "ã",
	"&auml;":    "ä",
	"&beta;":    "β",
	"&brvbar;":  "¦",
	"&bull;":    "•",
	"&ccedil;":  "ç",
	"&cedil;":   "¸",
	"&cent;":    "¢",
	"&chi;":     "χ",
	"&circ;":    "ˆ",
	"&copy;":    "©",
	"&curren;":  "¤",
	"&dagger;":  "†",
	"&darr;":    "↓",
	"&deg;":     "°",
	"&delta;":   "δ",
	"&divide;":  "÷",
	"&eacute;":  "é",
	"&ecirc;":   "ê",
	"&egrave;":  "è",
	"&emsp;":    " ",
	"&ensp;":    " ",
	"&epsilon;": "ε",
	"&eta;":     "η",
	"&eth;":     "ð",
	"&euml;":    "ë",
	"&euro;":    "€",
	"&frac12;":  "½",
	"&frac14;":  "¼",
	"&frac34;":  "¾",
	"&gamma;":   "γ",
	"&ge;":      "≥",
	"&gt;":      ">",
	"&harr;":    "↔",
	"&hearts;":  "♥",
	"&hellip;":  "…",
	"&iacute;":  "í",
	"&icirc;":   "î",
	"&iexcl;":   "¡",
	"&igrave;":  "ì",
	"&infin;":   "∞",
	"&iota;":    "ι",
	"&iquest;":  "¿",
	"&iuml;":    "ï",
	"&kappa;":   "κ",
	"&lambda;":  "λ",
	"&laquo;":   "«",
	"&larr;":    "←",
	"&ldquo;":   "“",
	"&le;":      "≤",
	"&lsaquo;":  "‹",
	"&lsquo;":   "‘",
	"&lt;":      "<",
	"&macr;":    "¯",
	"&mdash;":   "—",
	"&micro;":   "µ",
	"&middot;":  "·",
	"&mu;":      "μ",
	"&nbsp;":    " ",
	"&ndash;":   "–",
	"&ne;":      "≠",
	"&not;":     "¬",
	"&ntilde;":  "ñ",
	"&nu;":      "ν",
	"&oacute;":  "ó",
	"&ocirc;":   "ô",
	"&oelig;":   "œ",
	"&ograve;":  "ò",
	"&oline;":   "‾",
	"&omega;":   "ω",
	"&ordf;":    "ª",
	"&ordm;":    "º",
	"&oslash;":  "ø",
	"&otilde;":  "õ",
	"&ouml;":    "ö",
	"&para;":    "¶",
	"&permil;":  "‰",
	"&phi;":     "φ",
	"&pi;":      "π",
	"&plusmn;":  "±",
	"&pound;":   "£",
	"&prime;":   "′",
	"&psi;":     "ψ",
	"&quot;":    "\"",
	"&raquo;":   "»",
	"&rarr;":    "→",
	"&rdquo;":   "”",
	"&reg;":     "®",
	"&rho;":     "ρ",
	"&rsaquo;":  "›",
	"&rsquo;":   "’",
	"&sbquo;":   "‚",
	"&sect;":    "§",
	"&shy;":     "­",
	"&sigma;":   "σ",
	"&sup1;":    "¹",
	"&sup2;":    "²",
	"&sup3;":    "³",
	"&szlig;":   "ß",
	"&tau;":     "τ",
	"&theta;":   "θ",
	"&thinsp;":  " ",
	"&thorn;":   "þ",
	"&tilde;":   "˜",
	"&times;":   "×",
	"&trade;":   "™",
	"&uacute;":  "ú",
	"&uarr;":    "↑",
	"&ucirc;":   "û",
	"&ugrave;":  "ù",
	"&uml;":     "¨",
	"&upsilon;": "υ",
	"&uuml;":    "ü",
	"&xi;":      "ξ",
	"&yacute;":  "ý",
	"&yen;":     "¥",
	"&yuml;":    "ÿ",
	"&zeta;":    "ζ",
}
