package service

// Luhn reports whether number passes the mod-10 checksum. Every second digit from the
// right is doubled, subtracting 9 when the product exceeds 9. Empty input and input with
// non-digit characters fail.
func Luhn(number string) bool {
	if number == "" {
		return false
	}

	sum := 0
	length := len(number)

	// Process all digits from right to left
	for i := 0; i < length; i++ {
		c := number[length-1-i]
		if c < '0' || c > '9' {
			return false
		}
		digit := int(c - '0')

		// Double every second digit from the right (skipping the check digit itself)
		if i%2 == 1 {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}

		sum += digit
	}

	return sum%10 == 0
}

// abaChecksum reports whether a 9-digit routing number passes the ABA weighted checksum
// 3(d1+d4+d7) + 7(d2+d5+d8) + (d3+d6+d9) = 0 mod 10.
func abaChecksum(number string) bool {
	if len(number) != 9 {
		return false
	}

	weights := [3]int{3, 7, 1}
	sum := 0
	for i := 0; i < 9; i++ {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}
		sum += int(c-'0') * weights[i%3]
	}

	return sum%10 == 0
}
