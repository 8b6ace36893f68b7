package cmd

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	dbt "settlex/db/db"
	"settlex/db/mem"
	"settlex/db/pg"
	"settlex/mq/gcppubsub"
	"settlex/mq/goch"
	moq "settlex/mq/mq"
	"settlex/mq/rabbit"
	"settlex/web"
)

func serverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `This command starts the web server for the application.`,
		Run: func(cmd *cobra.Command, args []string) {
			isDev := cmd.Flags().Lookup("dev").Value.String() == "true"
			port := cmd.Flags().Lookup("port").Value.String()
			mqMode := cmd.Flags().Lookup("mq").Value.String()
			dbMode := cmd.Flags().Lookup("db").Value.String()

			if !isDev {
				gin.SetMode(gin.ReleaseMode)
			}

			expenses, trips := buildStores(dbMode)
			queue := buildQueue(mqMode)

			if err := web.Serve(":"+port, expenses, trips, queue); err != nil {
				log.Fatalf("web server stopped: %v", err)
			}
		},
	}

	cmd.Flags().Bool("dev", true, "Run in development mode")
	cmd.Flags().String("port", "8080", "Port to run the web server on")
	cmd.Flags().String("mq", "go_chan", "Message queue mode (go_chan, rabbitmq, gcp_pub_sub)")
	cmd.Flags().String("db", "mem", "Store mode (mem, pg)")

	return cmd
}

func buildStores(mode string) (dbt.ExpenseDBWrapper, dbt.TripDBWrapper) {
	switch mode {
	case "pg":
		gormDB, err := pg.InitPostgresGORM(pg.CreateDSN())
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		return pg.NewGORMExpenseDBWrapper(gormDB), pg.NewGORMTripDBWrapper(gormDB)
	case "mem":
		return mem.NewInMemoryExpenseDBWrapper(), mem.NewInMemoryTripDBWrapper()
	default:
		log.Fatalf("unknown db mode %q", mode)
		return nil, nil
	}
}

func buildQueue(mode string) moq.SettlementMessageQueueWrapper {
	switch mode {
	case "go_chan":
		return goch.NewGoChanSettlementMessageQueueWrapper()
	case "rabbitmq":
		conn := rabbit.NewRabbitConnection(rabbit.CreateAmqpURL())
		wrapper, err := rabbit.NewRabbitSettlementMessageQueueWrapper(conn)
		if err != nil {
			log.Fatalf("failed to init rabbitmq queues: %v", err)
		}
		return wrapper
	case "gcp_pub_sub":
		wrapper, err := gcppubsub.NewGCPSettlementMessageQueueWrapper(context.Background(), gcppubsub.GetGCPProjectID())
		if err != nil {
			log.Fatalf("failed to init pub/sub queues: %v", err)
		}
		return wrapper
	default:
		log.Fatalf("unknown mq mode %q", mode)
		return nil
	}
}
