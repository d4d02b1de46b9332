package main

import (
	"io"

	"github.com/smartfarm/farmstore/farm"
	"github.com/spf13/cobra"
)

func newTaskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all tasks",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				tasks, err := a.svc.ListTasks()
				if err != nil {
					return err
				}
				return a.printTasks(cmd, tasks)
			},
		},
		taskByIDCmd(a, "get <id>", "Show one task", (*farm.Service).GetTask),
		newTaskCreateCmd(a),
		newTaskUpdateCmd(a),
		taskByIDCmd(a, "complete <id>", "Mark a task as completed", (*farm.Service).CompleteTask),
		taskByIDCmd(a, "delete <id>", "Delete a task", (*farm.Service).DeleteTask),
		&cobra.Command{
			Use:   "auto-water",
			Short: `Create a watering task for every crop named "wheat"`,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				tasks, err := a.svc.AutoAssignWateringTasks()
				if err != nil {
					return err
				}
				return a.printTasks(cmd, tasks)
			},
		},
	)
	return cmd
}

// taskByIDCmd builds a command that applies op to the task named by its only
// argument.
func taskByIDCmd(a *app, use, short string, op func(*farm.Service, uint64) (*farm.Task, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			task, err := op(a.svc, id)
			if err != nil {
				return err
			}
			return a.printTasks(cmd, []*farm.Task{task})
		},
	}
}

func (a *app) printTasks(cmd *cobra.Command, tasks []*farm.Task) error {
	if tasks == nil {
		tasks = []*farm.Task{}
	}
	return a.print(cmd.OutOrStdout(), tasks, func(w io.Writer) { printTasks(w, tasks) })
}

func newTaskCreateCmd(a *app) *cobra.Command {
	var p farm.TaskPayload
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.svc.CreateTask(p)
			if err != nil {
				return err
			}
			return a.printTasks(cmd, []*farm.Task{task})
		},
	}
	cmd.Flags().StringVar(&p.Name, "name", "", "task name")
	cmd.Flags().StringVar(&p.Description, "description", "", "task description")
	cmd.Flags().Uint64Var(&p.CropID, "crop", 0, "id of the crop the task is for")
	must(cmd.MarkFlagRequired("name"))
	return cmd
}

func newTaskUpdateCmd(a *app) *cobra.Command {
	var (
		name, description string
		cropID            uint64
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var u farm.TaskUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				u.Name = &name
			}
			if flags.Changed("description") {
				u.Description = &description
			}
			if flags.Changed("crop") {
				u.CropID = &cropID
			}
			task, err := a.svc.UpdateTask(id, u)
			if err != nil {
				return err
			}
			return a.printTasks(cmd, []*farm.Task{task})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().Uint64Var(&cropID, "crop", 0, "new crop id")
	return cmd
}
