// Package all imports every props source for side-effect registration.
//
//	import _ "github.com/Vodeneev/nbaprops/internal/parser/parsers/all"
package all

import (
	_ "github.com/Vodeneev/nbaprops/internal/parser/parsers/bettingpros"
)
