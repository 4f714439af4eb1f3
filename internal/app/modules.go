package app

import (
	"github.com/specialistvlad/socketgrid/internal/socketevent"
	"github.com/specialistvlad/socketgrid/modules/chat"
	"github.com/specialistvlad/socketgrid/modules/echo"
)

// coreModules is the definitive list of all socket modules that are compiled
// into the socketgrid binary.
var coreModules = []socketevent.Module{
	&chat.Module{},
	&echo.Module{},
}
