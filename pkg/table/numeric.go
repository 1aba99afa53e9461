package table

// IsNumericCandidate is a cheap lookahead deciding whether s may be handed
// to a numeric parse. It skips any run of spaces, '-' and '+' in any order
// and count, then requires an ASCII digit. It does not validate the rest of
// the token: "12abc" and "--5" pass while "+" and "abc" do not.
func IsNumericCandidate(s string) bool {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '-' || s[i] == '+') {
		i++
	}
	if i == len(s) {
		return false
	}
	return isDigit(s[i])
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
