package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/core-tools/hsu-sys/pkg/config"
	sysDomain "github.com/core-tools/hsu-sys/pkg/domain"
	"github.com/core-tools/hsu-sys/pkg/errors"
	"github.com/core-tools/hsu-sys/pkg/proc"
	"github.com/core-tools/hsu-sys/pkg/rlimits"

	"google.golang.org/grpc/codes"
)

// run connects and hands the gateway to f
func run(f func(ctx context.Context, contract sysDomain.Contract) error) error {
	ctx := context.Background()
	contract, err := connect(ctx)
	if err != nil {
		return err
	}
	return f(ctx, contract)
}

func printInt(value int, err error) error {
	if err != nil {
		return err
	}
	fmt.Println(value)
	return nil
}

func printBool(value bool, err error) error {
	if err != nil {
		return err
	}
	fmt.Println(value)
	return nil
}

type statusCommand struct{}

func (c *statusCommand) Execute(args []string) error {
	return run(func(ctx context.Context, contract sysDomain.Contract) error {
		status, err := contract.Status(ctx)
		if err != nil {
			return err
		}
		fmt.Println(status)
		return nil
	})
}

type killCommand struct {
	Signal string `short:"s" long:"signal" default:"TERM" description:"signal name or number"`
	Args   struct {
		PID int `positional-arg-name:"pid" required:"yes"`
	} `positional-args:"yes"`
}

func (c *killCommand) Execute(args []string) error {
	signal, err := proc.ParseSignal(c.Signal)
	if err != nil {
		return err
	}
	return run(func(ctx context.Context, contract sysDomain.Contract) error {
		return contract.Kill(ctx, c.Args.PID, signal)
	})
}

type uidCommand struct {
	Set *int `long:"set" description:"switch to this user ID"`
}

func (c *uidCommand) Execute(args []string) error {
	return run(func(ctx context.Context, contract sysDomain.Contract) error {
		if c.Set != nil {
			return printInt(contract.SetUID(ctx, *c.Set))
		}
		return printInt(contract.GetUID(ctx))
	})
}

type gidCommand struct {
	Set *int `long:"set" description:"switch to this group ID"`
}

func (c *gidCommand) Execute(args []string) error {
	return run(func(ctx context.Context, contract sysDomain.Contract) error {
		if c.Set != nil {
			return printInt(contract.SetGID(ctx, *c.Set))
		}
		return printInt(contract.GetGID(ctx))
	})
}

type pidCommand struct{}

func (c *pidCommand) Execute(args []string) error {
	return run(func(ctx context.Context, contract sysDomain.Contract) error {
		return printInt(contract.GetPID(ctx))
	})
}

type ppidCommand struct{}

func (c *ppidCommand) Execute(args []string) error {
	return run(func(ctx context.Context, contract sysDomain.Contract) error {
		return printInt(contract.GetPPID(ctx))
	})
}

type pgidCommand struct {
	Set *int `long:"set" description:"move the server into this process group"`
}

func (c *pgidCommand) Execute(args []string) error {
	return run(func(ctx context.Context, contract sysDomain.Contract) error {
		if c.Set != nil {
			return printInt(contract.SetPGID(ctx, *c.Set))
		}
		return printInt(contract.GetPGID(ctx))
	})
}

type priorityCommand struct {
	Set *int `long:"set" description:"new nice value"`
}

func (c *priorityCommand) Execute(args []string) error {
	return run(func(ctx context.Context, contract sysDomain.Contract) error {
		if c.Set != nil {
			return printInt(contract.SetPriority(ctx, *c.Set))
		}
		return printInt(contract.GetPriority(ctx))
	})
}

type getRlimitsCommand struct{}

func (c *getRlimitsCommand) Execute(args []string) error {
	return run(func(ctx context.Context, contract sysDomain.Contract) error {
		limits, err := contract.GetRlimits(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KIND\tSOFT\tHARD")
		for _, l := range limits {
			if !l.Kind.Supported {
				fmt.Fprintf(w, "%s\t-\t-\n", l.Kind.Name)
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", l.Kind.Name, formatLimit(l.Soft), formatLimit(l.Hard))
		}
		return w.Flush()
	})
}

func formatLimit(v uint64) string {
	if rlimits.IsUnlimited(v) {
		return "unlimited"
	}
	return strconv.FormatUint(v, 10)
}

type setRlimitsCommand struct {
	Limits map[string]string `short:"l" long:"limit" key-value-delimiter:"=" description:"kind=value, value is a number or unlimited; repeatable"`
}

func (c *setRlimitsCommand) Execute(args []string) error {
	values, err := c.vector()
	if err != nil {
		return err
	}
	return run(func(ctx context.Context, contract sysDomain.Contract) error {
		return contract.SetRlimits(ctx, values)
	})
}

func (c *setRlimitsCommand) vector() ([]float64, error) {
	startup := config.StartupConfig{Rlimits: make(map[string]config.LimitValue, len(c.Limits))}
	for name, raw := range c.Limits {
		v, err := config.ParseLimitValue(raw)
		if err != nil {
			return nil, err
		}
		startup.Rlimits[name] = v
	}
	values, err := startup.LimitVector()
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = rlimits.Missing()
	}
	return values, nil
}

type changeProfileCommand struct {
	Args struct {
		Profile string `positional-arg-name:"profile" required:"yes"`
	} `positional-args:"yes"`
}

// The server re-executes itself to apply a profile, which drops the
// connection of the call that asked for it. The command then reattaches and
// reports the confinement the server came back with.
func (c *changeProfileCommand) Execute(args []string) error {
	return run(func(ctx context.Context, contract sysDomain.Contract) error {
		err := contract.ChangeProfile(ctx, c.Args.Profile)
		if err == nil || !droppedByRestart(err) {
			return err
		}
		if opts.AttachPort == 0 {
			fmt.Println("server restarting under", c.Args.Profile)
			return nil
		}
		contract, err = connect(ctx)
		if err != nil {
			return err
		}
		current, ok, err := contract.AppArmorContext(ctx)
		if err != nil {
			return err
		}
		if !ok || current.Label != c.Args.Profile {
			return fmt.Errorf("server came back unconfined by %s", c.Args.Profile)
		}
		fmt.Println(current.Label)
		return nil
	})
}

func droppedByRestart(err error) bool {
	var domainErr *errors.DomainError
	if !stderrors.As(err, &domainErr) {
		return false
	}
	return domainErr.Context["code"] == codes.Unavailable.String()
}

type appArmorEnabledCommand struct{}

func (c *appArmorEnabledCommand) Execute(args []string) error {
	return run(func(ctx context.Context, contract sysDomain.Contract) error {
		enabled, supported, err := contract.AppArmorEnabled(ctx)
		if err != nil {
			return err
		}
		if !supported {
			fmt.Println("unsupported")
			return nil
		}
		fmt.Println(enabled)
		return nil
	})
}

type appArmorContextCommand struct{}

func (c *appArmorContextCommand) Execute(args []string) error {
	return run(func(ctx context.Context, contract sysDomain.Contract) error {
		sc, ok, err := contract.AppArmorContext(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("unconfined")
			return nil
		}
		if sc.Mode == "" {
			fmt.Println(sc.Label)
			return nil
		}
		fmt.Printf("%s (%s)\n", sc.Label, sc.Mode)
		return nil
	})
}

type safeBuildCommand struct{}

func (c *safeBuildCommand) Execute(args []string) error {
	return run(func(ctx context.Context, contract sysDomain.Contract) error {
		return printBool(contract.SafeBuild(ctx))
	})
}

type interactiveCommand struct {
	Set string `long:"set" choice:"true" choice:"false" description:"new interactive flag"`
}

func (c *interactiveCommand) Execute(args []string) error {
	return run(func(ctx context.Context, contract sysDomain.Contract) error {
		if c.Set != "" {
			return printBool(contract.SetInteractive(ctx, c.Set == "true"))
		}
		return printBool(contract.Interactive(ctx))
	})
}

type tempDirCommand struct {
	Args struct {
		Path string `positional-arg-name:"path" required:"yes"`
	} `positional-args:"yes"`
}

func (c *tempDirCommand) Execute(args []string) error {
	return run(func(ctx context.Context, contract sysDomain.Contract) error {
		path, err := contract.SetTempDir(ctx, c.Args.Path)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	})
}
