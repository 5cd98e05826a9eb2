package config

// Recognized option names. Unknown names are still accepted (as strings);
// these constants just save call sites from typos.
const (
	OptAgent                  = "agent"
	OptVhost                  = "vhost"
	OptSSLServerNameIndication = "ssl_server_name_indication"
	OptDomain                 = "domain"

	OptReadMaxData = "read_max_data"
	OptPartial     = "partial"

	OptURIEncodeMode        = "uri_encode_mode"
	OptURIEncodeCount       = "uri_encode_count"
	OptURIFullURL           = "uri_full_url"
	OptURIDirSelfReference  = "uri_dir_self_reference"
	OptURIDirFakeRelative   = "uri_dir_fake_relative"
	OptURIUseBackslashes    = "uri_use_backslashes"
	OptURIFakeEnd           = "uri_fake_end"
	OptURIFakeParamsStart   = "uri_fake_params_start"

	OptPadMethodURICount = "pad_method_uri_count"
	OptPadURIVersionCount = "pad_uri_version_count"
	OptPadMethodURIType  = "pad_method_uri_type"
	OptPadURIVersionType = "pad_uri_version_type"

	OptMethodRandomValid   = "method_random_valid"
	OptMethodRandomInvalid = "method_random_invalid"
	OptMethodRandomCase    = "method_random_case"
	OptVersionRandomValid   = "version_random_valid"
	OptVersionRandomInvalid = "version_random_invalid"

	OptPadFakeHeaders      = "pad_fake_headers"
	OptPadFakeHeadersCount = "pad_fake_headers_count"
	OptPadGetParams        = "pad_get_params"
	OptPadGetParamsCount   = "pad_get_params_count"
	OptPadPostParams       = "pad_post_params"
	OptPadPostParamsCount  = "pad_post_params_count"
	OptShuffleGetParams    = "shuffle_get_params"
	OptShufflePostParams   = "shuffle_post_params"
	OptHeaderFolding       = "header_folding"
	OptChunkedSize         = "chunked_size"

	// Auth-coordinator knobs: which scheme to prefer, whether to defer the
	// request body past the auth handshake, which wire scheme token (NTLM or
	// Negotiate) the NTLM exchange uses, whether to skip the 100-Continue
	// workaround, and whether Digest quotes the uri= value.
	OptPreferredAuth  = "preferred_auth"
	OptNoBodyForAuth  = "no_body_for_auth"
	OptProvider       = "provider"
	OptSkip100        = "skip_100"
	OptDigestAuthIIS  = "digest_auth_iis"

	OptUsername = "username"
	OptPassword = "password"
)

// Enum value sets.
var (
	uriEncodeModes = []string{
		"hex-normal", "hex-all", "hex-random", "hex-noslashes",
		"u-normal", "u-random", "u-all",
	}
	padTypes = []string{"space", "tab", "apache"}
	providers = []string{"NTLM", "Negotiate"}
)

func defaultSchema() map[string]Field {
	s := map[string]Field{
		OptAgent:                   {Kind: KindString},
		OptVhost:                   {Kind: KindString},
		OptSSLServerNameIndication: {Kind: KindString},
		OptDomain:                  {Kind: KindString},

		OptReadMaxData: {Kind: KindInt},
		OptPartial:     {Kind: KindBool},

		OptURIEncodeMode:       {Kind: KindEnum, Choices: uriEncodeModes},
		OptURIEncodeCount:      {Kind: KindInt},
		OptURIFullURL:          {Kind: KindBool},
		OptURIDirSelfReference: {Kind: KindBool},
		OptURIDirFakeRelative:  {Kind: KindBool},
		OptURIUseBackslashes:   {Kind: KindBool},
		OptURIFakeEnd:          {Kind: KindBool},
		OptURIFakeParamsStart:  {Kind: KindBool},

		OptPadMethodURICount:  {Kind: KindInt},
		OptPadURIVersionCount: {Kind: KindInt},
		OptPadMethodURIType:   {Kind: KindEnum, Choices: padTypes},
		OptPadURIVersionType:  {Kind: KindEnum, Choices: padTypes},

		OptMethodRandomValid:    {Kind: KindBool},
		OptMethodRandomInvalid:  {Kind: KindBool},
		OptMethodRandomCase:     {Kind: KindBool},
		OptVersionRandomValid:   {Kind: KindBool},
		OptVersionRandomInvalid: {Kind: KindBool},

		OptPadFakeHeaders:      {Kind: KindBool},
		OptPadFakeHeadersCount: {Kind: KindInt},
		OptPadGetParams:        {Kind: KindBool},
		OptPadGetParamsCount:   {Kind: KindInt},
		OptPadPostParams:       {Kind: KindBool},
		OptPadPostParamsCount:  {Kind: KindInt},
		OptShuffleGetParams:    {Kind: KindBool},
		OptShufflePostParams:   {Kind: KindBool},
		OptHeaderFolding:       {Kind: KindBool},
		OptChunkedSize:         {Kind: KindInt},

		OptPreferredAuth: {Kind: KindString},
		OptNoBodyForAuth: {Kind: KindBool},
		OptProvider:      {Kind: KindEnum, Choices: providers},
		OptSkip100:       {Kind: KindBool},
		OptDigestAuthIIS: {Kind: KindBool},

		OptUsername: {Kind: KindString},
		OptPassword: {Kind: KindString},
	}
	return s
}

func defaultValues() map[string]string {
	return map[string]string{
		OptReadMaxData:   "1048576", // 1 MiB
		OptPartial:       "false",
		OptDigestAuthIIS: "true",
		OptProvider:      "Negotiate",
	}
}
