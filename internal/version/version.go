package version

// 构建时通过 -ldflags "-X github.com/SparkleBo/zchain/internal/version.Version=..." 注入
var (
	Version = "dev"
	Commit  = "none"
)

// String 形如 "dev (none)"
func String() string { return Version + " (" + Commit + ")" }
