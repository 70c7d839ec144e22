// Package config provides configuration types and loading for nginx-route.
//
// # Configuration File
//
// Settings are read from a TOML file, by default
// $XDG_CONFIG_HOME/nginx-route/config.toml. A missing default file is not an
// error; the built-in defaults are used instead.
//
//	[remote]
//	host = "203.0.113.10"
//	user = "root"
//	port = 22
//	identity_file = "~/.ssh/id_ed25519"
//	known_hosts = "~/.ssh/known_hosts"
//	connect_timeout = "15s"
//	candidates = [
//	    "/etc/nginx/sites-available/n-lux.com",
//	    "/etc/nginx/conf.d/n-lux.com",
//	]
//	test_command = "nginx -t"
//	reload_command = "systemctl reload nginx"
//
//	[proxy]
//	upstream = "http://127.0.0.1:5000"
//
//	[state]
//	backup_dir = "."
//
// # Environment
//
// NGINX_ROUTE_HOST and NGINX_ROUTE_USER override the file. The SSH password is
// never read from the file: it comes from NGINX_ROUTE_PASSWORD or an
// interactive prompt.
package config
