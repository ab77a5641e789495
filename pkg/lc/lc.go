// Package lc resolves Elmo two-letter parameter mnemonics ("AC", "CL", ...)
// to their CANopen object dictionary index.
package lc

import "sort"

// entry pairs a two-character Elmo Letter Command mnemonic with the
// object dictionary index it addresses.
type entry struct {
	mnemonic string
	index    uint16
}

// table must stay sorted in strict ASCII order; Resolve relies on it for
// binary search.
var table = []entry{
	{"AC", 0x300C},
	{"BP", 0x303D},
	{"CA", 0x3052},
	{"CL", 0x305D},
	{"DC", 0x3078},
	{"ER", 0x30AB},
	{"HL", 0x3111},
	{"LL", 0x31A1},
	{"MC", 0x31BC},
	{"PL", 0x3231},
	{"SF", 0x3297},
	{"UM", 0x32E6},
}

// Resolve maps a two-character letter command to its object dictionary
// index. An unknown mnemonic returns 0x0000.
func Resolve(mnemonic string) uint16 {
	i := sort.Search(len(table), func(i int) bool {
		return table[i].mnemonic >= mnemonic
	})
	if i < len(table) && table[i].mnemonic == mnemonic {
		return table[i].index
	}
	return 0x0000
}
