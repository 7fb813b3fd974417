package core

var (
	_ TokenService      = (*Service)(nil)
	_ CacheKeyStrategy  = EscapedKeyStrategy{}
	_ AuthorityRegistry = (*MemoryAuthorityRegistry)(nil)
	_ MetricsRecorder   = NopMetricsRecorder{}
	_ ResultCodec       = JSONResultCodec{}
	_ ConfigProvider    = (*CfgxConfigProvider)(nil)
	_ OptionsResolver   = GoOptionsResolver{}
)
