// Where: internal/meta/meta.go
// What: CLI-local metadata constants.
// Why: Keep the tool name and the shared project file layout in one place.
package meta

const (
	// Project Identity
	AppName   = "em-commons"
	Slug      = "em-commons"
	EnvPrefix = "EM_COMMONS"

	// Shared package layout (inside the consuming project)
	DefaultPackageDir = "node_modules/@emarketeer/ts-microservice-commons/dist"
	TSConfigSource    = "tsconfig.json"
	ESLintConfig      = ".eslintrc"
	JestConfig        = "jest.config.json"

	// Project files (relative to the project directory)
	ProjectConfigFile   = "serverless.yml"
	GeneratedConfigFile = "generated.serverless.yml"
	TSConfigFile        = "tsconfig.json"
	DotEnvFile          = ".env"

	// Deployment framework defaults
	DefaultNodeMemoryMB = 4096
	NodeOptionsEnv      = "NODE_OPTIONS"
)
