package mycnf

// ConnParams are the connection parameters readable from my.cnf files,
// using the names the database driver layer consumes. A zero field means
// "not set"; callers pre-setting a field prevent it from being read from
// config.
type ConnParams struct {
	User             string  `yaml:"user,omitempty"`
	Password         string  `yaml:"password,omitempty"`
	Host             string  `yaml:"host,omitempty"`
	Database         string  `yaml:"database,omitempty"`
	UnixSocket       string  `yaml:"unix_socket,omitempty"`
	Port             int     `yaml:"port,omitempty"`
	Charset          string  `yaml:"charset,omitempty"`
	ConnectTimeout   float64 `yaml:"connect_timeout,omitempty"`
	MaxAllowedPacket string  `yaml:"max_allowed_packet,omitempty"`
	BindAddress      string  `yaml:"bind_address,omitempty"`
	SSLCA            string  `yaml:"ssl_ca,omitempty"`
	SSLCert          string  `yaml:"ssl_cert,omitempty"`
	SSLKey           string  `yaml:"ssl_key,omitempty"`

	// Both driven by the presence of ssl_verify_server_cert.
	SSLVerifyCert     bool `yaml:"ssl_verify_cert,omitempty"`
	SSLVerifyIdentity bool `yaml:"ssl_verify_identity,omitempty"`
}

// ConnParams builds connection parameters from the loaded config. Fields
// already set in overrides are never read from config. If no host is set,
// or the host is localhost, the socket path is preferred and the port
// dropped; otherwise the port is preferred and the socket dropped.
func (c *Cnf) ConnParams(overrides ConnParams) (ConnParams, error) {
	p := overrides

	setStr := func(key string, dst *string) {
		if *dst != "" {
			return
		}
		if v, ok := c.GetString(key); ok {
			*dst = v
		}
	}
	setStr("user", &p.User)
	setStr("password", &p.Password)
	setStr("host", &p.Host)
	setStr("database", &p.Database)
	setStr("socket", &p.UnixSocket)
	setStr("default_character_set", &p.Charset)
	setStr("max_allowed_packet", &p.MaxAllowedPacket)
	setStr("bind_address", &p.BindAddress)
	setStr("ssl_ca", &p.SSLCA)
	setStr("ssl_cert", &p.SSLCert)
	setStr("ssl_key", &p.SSLKey)

	if p.Port == 0 {
		port, ok, err := c.GetInt("port")
		if err != nil {
			return ConnParams{}, err
		}
		if ok {
			p.Port = port
		}
	}
	if p.ConnectTimeout == 0 {
		timeout, ok, err := c.GetFloat("connect_timeout")
		if err != nil {
			return ConnParams{}, err
		}
		if ok {
			p.ConnectTimeout = timeout
		}
	}
	if !p.SSLVerifyCert || !p.SSLVerifyIdentity {
		if ok, _ := c.GetNoValue("ssl_verify_server_cert"); ok {
			p.SSLVerifyCert = true
			p.SSLVerifyIdentity = true
		}
	}

	// Socket vs port: mysql connects over the unix socket for localhost.
	if p.Host == "" || p.Host == "localhost" {
		if p.UnixSocket != "" {
			p.Port = 0
		}
	} else {
		p.UnixSocket = ""
	}
	return p, nil
}
