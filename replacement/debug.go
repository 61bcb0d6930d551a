//go:build replacement_debug

package replacement

const debugging = true

func assert(cond bool, message string) {
	if !cond {
		panic(message)
	}
}
