package configkey

const (
	LogLevel  = "log.level"
	DebugMode = "debug"

	DatabasePath = "database.path"

	KeyserverURL = "keyserver.url"

	EditorCommand = "editor.command"

	RelayPort = "relay.port"
)
