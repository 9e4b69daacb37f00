package static

type Option func(*Provider)

// WithUserHeader sets the header holding the user name forwarded by a proxy.
func WithUserHeader(val string) Option {
	return func(p *Provider) {
		p.userHeader = val
	}
}

func WithEmailHeader(val string) Option {
	return func(p *Provider) {
		p.emailHeader = val
	}
}
