package letters

// keyboardMiss maps a key on the US QWERTY layout to the letter printed on the
// same key in the Russian ЙЦУКЕН layout. Values must stay unique: the backward
// table is derived by inversion.
var keyboardMiss = map[rune]rune{
	'`': 'ё',
	'q': 'й',
	'w': 'ц',
	'e': 'у',
	'r': 'к',
	't': 'е',
	'y': 'н',
	'u': 'г',
	'i': 'ш',
	'o': 'щ',
	'p': 'з',
	'[': 'х',
	']': 'ъ',
	'a': 'ф',
	's': 'ы',
	'd': 'в',
	'f': 'а',
	'g': 'п',
	'h': 'р',
	'j': 'о',
	'k': 'л',
	'l': 'д',
	';': 'ж',
	'\'': 'э',
	'z': 'я',
	'x': 'ч',
	'c': 'с',
	'v': 'м',
	'b': 'и',
	'n': 'т',
	'm': 'ь',
	',': 'б',
	'.': 'ю',
}

// translit is a one-letter phonetic rendering of Latin into Cyrillic.
// Letters without an unambiguous single-letter counterpart (q, w, x) are left
// out so the table stays invertible.
var translit = map[rune]rune{
	'a': 'а',
	'b': 'б',
	'v': 'в',
	'g': 'г',
	'd': 'д',
	'e': 'е',
	'z': 'з',
	'i': 'и',
	'j': 'й',
	'k': 'к',
	'l': 'л',
	'm': 'м',
	'n': 'н',
	'o': 'о',
	'p': 'п',
	'r': 'р',
	's': 'с',
	't': 'т',
	'u': 'у',
	'f': 'ф',
	'h': 'х',
	'c': 'ц',
	'y': 'ы',
}
