package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-locator/internal/commands"
	"github.com/pixil98/go-locator/internal/console"
	"github.com/pixil98/go-locator/internal/directory"
	"github.com/pixil98/go-locator/internal/driver"
	"github.com/pixil98/go-locator/internal/listener"
	"github.com/pixil98/go-locator/internal/locate"
	"github.com/pixil98/go-locator/internal/messaging"
	"github.com/pixil98/go-locator/internal/roster"
	"github.com/pixil98/go-locator/internal/session"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	tick, err := cfg.tickInterval()
	if err != nil {
		return nil, err
	}
	ttl, err := cfg.Nats.directoryTTL()
	if err != nil {
		return nil, err
	}
	locCfg, err := cfg.Locator.build()
	if err != nil {
		return nil, err
	}

	// Everything on the bus waits for this worker to connect.
	conn, err := cfg.Nats.buildConnection(cfg.Process)
	if err != nil {
		return nil, fmt.Errorf("creating nats connection: %w", err)
	}
	bus := messaging.NewNatsBus(conn, cfg.Nats.prefix(), cfg.Process)
	dir := directory.NewKVDirectory(conn, cfg.Nats.prefix(), cfg.Process, ttl)

	var regOpts []roster.RegistryOpt
	if cfg.Storage.Residents.Path != "" {
		residents, err := cfg.Storage.Residents.BuildFileStore()
		if err != nil {
			return nil, fmt.Errorf("loading residents: %w", err)
		}
		regOpts = append(regOpts, roster.WithResidents(residents))
	}
	registry := roster.NewRegistry(dir, regOpts...)

	perms, err := cfg.Permissions.build()
	if err != nil {
		return nil, fmt.Errorf("loading permissions: %w", err)
	}

	var zoneIndex locate.ZoneIndex
	idx, err := cfg.Zones.buildIndex(cfg.Storage.Zones)
	if err != nil {
		return nil, err
	}
	if idx != nil {
		zoneIndex = idx
	}

	out := console.NewOutput(os.Stdout)
	notifier := messaging.NewPlayerNotifier(conn, out)

	originator := locate.NewOriginator(bus, dir, registry, perms, notifier, locCfg)
	responder := locate.NewResponder(bus, dir, registry, zoneIndex, locCfg)
	locator, err := locate.NewService(bus, originator, responder, locCfg)
	if err != nil {
		return nil, fmt.Errorf("creating locator: %w", err)
	}

	cmdStore, err := cfg.Storage.Commands.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("loading commands: %w", err)
	}
	cmdHandler := commands.NewHandler(cmdStore)
	err = cmdHandler.RegisterFactory("where", commands.NewWhereHandlerFactory(
		originator, dir, perms, locCfg.LimitedCapability, locCfg.UnlimitedCapability))
	if err != nil {
		return nil, fmt.Errorf("registering where handler: %w", err)
	}
	err = cmdHandler.RegisterFactory("teleport", commands.NewTeleportHandlerFactory(registry, notifier))
	if err != nil {
		return nil, fmt.Errorf("registering teleport handler: %w", err)
	}
	if err := cmdHandler.CompileAll(); err != nil {
		return nil, fmt.Errorf("compiling commands: %w", err)
	}

	workers := service.WorkerList{
		"nats":    conn,
		"locator": locator,
		"driver":  driver.NewDriver([]driver.Manager{registry}, driver.WithTickLength(tick)),
	}
	if cfg.Console.Enabled {
		workers["console"] = console.New(os.Stdin, out, cmdHandler)
	}

	if len(cfg.Sessions.Listeners) > 0 {
		var opts []session.ManagerOpt
		if cfg.Sessions.Greeting != "" {
			opts = append(opts, session.WithGreeting(cfg.Sessions.Greeting))
		}
		sessions := session.NewManager(registry, dir, notifier, cmdHandler, cfg.Sessions.Spawn.sample(), opts...)
		cm := listener.NewConnectionManager(sessions)

		for i, l := range cfg.Sessions.Listeners {
			w, err := l.BuildListener(cm)
			if err != nil {
				return nil, fmt.Errorf("creating listener %d: %w", i, err)
			}
			workers[fmt.Sprintf("listener-%d", i)] = w
		}
	}

	return workers, nil
}
