package database

import (
	"fmt"
	"net/url"
	"strings"
)

// maskDSN hides the password of a go-sql-driver DSN (user:pass@tcp(...)).
func maskDSN(dsn string) string {
	at := strings.Index(dsn, "@")
	if at <= 0 {
		return dsn
	}
	if colon := strings.Index(dsn[:at], ":"); colon > 0 {
		return dsn[:colon+1] + "****" + dsn[at:]
	}
	return dsn
}

// normalizeMySQLDSN accepts a go-sql-driver DSN (returned as is) or a mysql:// /
// jdbc:mysql:// URL, which is rewritten into go-sql-driver syntax. Non-empty
// user/pass override whatever the URL carries.
func normalizeMySQLDSN(input, user, pass string) string {
	in := strings.TrimPrefix(strings.TrimSpace(input), "jdbc:")
	if !strings.HasPrefix(in, "mysql://") {
		return in
	}
	u, err := url.Parse(in)
	if err != nil {
		return in // 交给驱动报错
	}

	q := u.Query()
	urlUser, urlPass := credentials(u, q)
	if user == "" {
		user = urlUser
	}
	if pass == "" {
		pass = urlPass
	}
	translateJDBCParams(q)

	var b strings.Builder
	if user != "" {
		b.WriteString(user)
		if pass != "" {
			b.WriteString(":" + pass)
		}
		b.WriteString("@")
	}
	fmt.Fprintf(&b, "tcp(%s)/%s", u.Host, strings.TrimPrefix(u.Path, "/"))
	if enc := q.Encode(); enc != "" {
		b.WriteString("?" + enc)
	}
	return b.String()
}

// credentials reads user info from the URL, letting ?user=/&password= win; both
// params are removed from q.
func credentials(u *url.URL, q url.Values) (user, pass string) {
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	if v := q.Get("user"); v != "" {
		user = v
	}
	if v := q.Get("password"); v != "" {
		pass = v
	}
	q.Del("user")
	q.Del("password")
	return user, pass
}

// translateJDBCParams maps Connector/J options onto go-sql-driver ones and fills
// parseTime/charset defaults.
func translateJDBCParams(q url.Values) {
	if enc := q.Get("characterEncoding"); enc != "" && q.Get("charset") == "" {
		q.Set("charset", enc)
	}
	if v := strings.ToLower(q.Get("useSSL")); v != "" {
		switch v {
		case "true", "1":
			q.Set("tls", "true")
		case "skip-verify", "preferred":
			q.Set("tls", v)
		default:
			q.Set("tls", "false")
		}
	}
	if tz := q.Get("serverTimezone"); tz != "" {
		q.Set("loc", tz)
	}
	for _, k := range []string{"characterEncoding", "useUnicode", "zeroDateTimeBehavior", "useSSL", "serverTimezone"} {
		q.Del(k)
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "true")
	}
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
}
