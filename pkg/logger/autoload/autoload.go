// Package autoload initializes the global logger from the LOG_* environment
// on import:
//
//	import _ "github.com/harborlend/mortgage-assistant/pkg/logger/autoload"
package autoload

import (
	configx "github.com/harborlend/mortgage-assistant/pkg/config"
	logx "github.com/harborlend/mortgage-assistant/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
