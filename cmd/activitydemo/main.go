// Command activitydemo runs a small, hardcoded sample activity graph end to
// end and prints its outcome, to exercise the engine the way a manual smoke
// test would: fetch a user, fan out to profile and orders, then render a
// page once both have proceeded. The graph's shape is fixed in Go; --config
// optionally loads an EngineConfig from YAML to tune how that fixed graph
// runs: its reactor pool size and default-required flag are applied, its
// log level is validated but not applied.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ygrebnov/activity"
)

type requestContext struct {
	UserID string
}

type FetchUser struct {
	activity.Base[FetchUser, string, error]
}

func (a *FetchUser) Run() {
	a.Guard(func() {
		rc := activity.Context[requestContext](a.Collector())
		time.Sleep(5 * time.Millisecond)
		_ = a.Success("user:" + rc.UserID)
	})
}

type FetchProfile struct {
	activity.Base[FetchProfile, string, error]
}

func (a *FetchProfile) Run() {
	a.Guard(func() {
		acc := activity.NewAccessor(a.Collector())
		user := activity.Success[FetchUser, string, error](acc)
		_ = a.Success("profile-for-" + user)
	})
}

type FetchOrders struct {
	activity.Base[FetchOrders, []string, error]
}

func (a *FetchOrders) Run() {
	a.Guard(func() {
		acc := activity.NewAccessor(a.Collector())
		user := activity.Success[FetchUser, string, error](acc)
		_ = a.Success([]string{"order-1-for-" + user, "order-2-for-" + user})
	})
}

type RenderPage struct {
	activity.Base[RenderPage, string, error]
}

func (a *RenderPage) Run() {
	a.Guard(func() {
		acc := activity.NewAccessor(a.Collector())
		profile := activity.Success[FetchProfile, string, error](acc)
		orders := activity.Success[FetchOrders, []string, error](acc)
		_ = a.Success(fmt.Sprintf("page(%s, %d orders)", profile, len(orders)))
	})
}

func runDemo(userID, configPath string) error {
	var collectorOpts []activity.CollectorOption
	if configPath != "" {
		cfg, err := activity.LoadConfig(configPath)
		if err != nil {
			return err
		}
		collectorOpts = append(collectorOpts, activity.FromEngineConfig(cfg, nil, nil))
	}

	starter := activity.NewStarter(requestContext{UserID: userID}, collectorOpts...)

	userTask, err := activity.NewSubtask[*FetchUser, string, error](starter.Collector(), &FetchUser{}, starter)
	if err != nil {
		return err
	}
	profileTask, err := activity.NewSubtask[*FetchProfile, string, error](starter.Collector(), &FetchProfile{}, userTask)
	if err != nil {
		return err
	}
	ordersTask, err := activity.NewSubtask[*FetchOrders, []string, error](starter.Collector(), &FetchOrders{}, userTask)
	if err != nil {
		return err
	}
	renderTask, err := activity.NewSubtask[*RenderPage, string, error](starter.Collector(), &RenderPage{}, profileTask, ordersTask)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	barrier := activity.NewBarrier(starter.Collector(), renderTask)
	if err := barrier.Exec(func(acc activity.Accessor) {
		defer close(done)
		if activity.Okay[RenderPage, string, error](acc) {
			color.Green("page: %s", activity.Success[RenderPage, string, error](acc))
			return
		}
		color.Red(
			"render did not complete: failed=%v canceled=%v",
			activity.Failed[RenderPage, string, error](acc),
			activity.Canceled[RenderPage, string, error](acc),
		)
	}); err != nil {
		return err
	}

	starter.Begin()
	<-done
	return nil
}

func main() {
	var userID, configPath string
	root := &cobra.Command{
		Use:   "activitydemo",
		Short: "Run a sample fetch-user/fetch-profile/fetch-orders/render graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(userID, configPath)
		},
	}
	root.Flags().StringVar(&userID, "user", "alice", "user id to fetch")
	root.Flags().StringVar(&configPath, "config", "", "optional YAML EngineConfig (reactor pool size, default-required) to tune the run")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
